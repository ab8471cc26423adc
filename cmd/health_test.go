// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewHealthCommand verifies the health command structure.
func TestNewHealthCommand(t *testing.T) {
	deps := DefaultHealthDeps()
	cmd := NewHealthCommand(deps)

	assert.Equal(t, "health", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "command should have short description")

	outputShortFlag := cmd.Flags().ShorthandLookup("o")
	require.NotNil(t, outputShortFlag, "output flag should have shorthand -o")
}

// TestHealthCommand_Healthy reports a reachable backend.
func TestHealthCommand_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	deps := &HealthCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewHealthCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "HEALTHY")
}

// TestHealthCommand_Unhealthy reports an unreachable backend without
// failing the command.
func TestHealthCommand_Unhealthy(t *testing.T) {
	deps := &HealthCommandDeps{LoadConfig: testLoadConfig("http://localhost:1", t.TempDir())}
	cmd := NewHealthCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute(), "an unhealthy backend is a report, not a failure")
	assert.Contains(t, out.String(), "UNHEALTHY")
}

// TestHealthCommand_JSONOutput checks the structured report shape.
func TestHealthCommand_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	deps := &HealthCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewHealthCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"-o", "json"})

	require.NoError(t, cmd.Execute())

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, true, report["healthy"])
	assert.Equal(t, srv.URL, report["server"])
}

// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewTTSCommand verifies the tts command structure.
func TestNewTTSCommand(t *testing.T) {
	deps := DefaultTTSDeps()
	cmd := NewTTSCommand(deps)

	assert.Equal(t, "tts <text>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "command should have short description")
	assert.NotEmpty(t, cmd.Long, "command should have long description")

	for _, name := range []string{"transcript", "session", "dir"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
	}
}

// TestTTSCommand_RequiresText verifies that the text argument is required.
func TestTTSCommand_RequiresText(t *testing.T) {
	cmd := NewTTSCommand(DefaultTTSDeps())
	cmd.SetArgs([]string{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	assert.Error(t, err, "tts should require a text argument")
}

// TestTTSCommand_SavesAudio synthesizes and downloads audio from a test
// backend.
func TestTTSCommand_SavesAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/chat/start":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "session_id": "sess-1"})
		case strings.HasSuffix(r.URL.Path, "/tts"):
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "audio_url": "/audio/reply.mp3"})
		case strings.HasPrefix(r.URL.Path, "/audio/"):
			w.Write([]byte("ID3 fake audio"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	downloadDir := t.TempDir()
	deps := &TTSCommandDeps{LoadConfig: testLoadConfig(srv.URL, downloadDir)}
	cmd := NewTTSCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"The meeting is at ten.", "--dir", downloadDir})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Saved audio to")
	assert.FileExists(t, filepath.Join(downloadDir, "reply.mp3"))
}

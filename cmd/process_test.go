// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewProcessCommand verifies the process command group structure.
func TestNewProcessCommand(t *testing.T) {
	deps := DefaultProcessDeps()
	cmd := NewProcessCommand(deps)

	assert.Equal(t, "process", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "command should have short description")
	assert.NotEmpty(t, cmd.Long, "command should have long description")

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	assert.True(t, subcommands["video"], "video subcommand should exist")
	assert.True(t, subcommands["audio"], "audio subcommand should exist")
	assert.True(t, subcommands["transcript"], "transcript subcommand should exist")

	for _, name := range []string{"to", "title", "date", "company", "note", "download"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
	}

	outputShortFlag := cmd.PersistentFlags().ShorthandLookup("o")
	require.NotNil(t, outputShortFlag, "output flag should have shorthand -o")
}

// TestProcessTranscript_Pipeline runs the transcript pipeline against a
// test backend and checks the summary output.
func TestProcessTranscript_Pipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process-transcript" {
			http.NotFound(w, r)
			return
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "John: shipped.\n", body["transcript"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"session_id":      "sess-3",
			"pdf_file":        "minutes.pdf",
			"processing_time": 2.5,
			"email_sent":      true,
		})
	}))
	defer srv.Close()

	transcript := filepath.Join(t.TempDir(), "meeting.txt")
	require.NoError(t, os.WriteFile(transcript, []byte("John: shipped.\n"), 0o644))

	deps := &ProcessCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewProcessCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"transcript", transcript, "--to", "team@acme.test"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Processing complete.")
	assert.Contains(t, output, "sess-3")
	assert.Contains(t, output, "minutes.pdf")
	assert.Contains(t, output, "Email:     sent")
}

// TestProcessAudio_Rejected checks error reporting on a failed pipeline.
func TestProcessAudio_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unsupported codec"})
	}))
	defer srv.Close()

	recording := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(recording, []byte("x"), 0o644))

	deps := &ProcessCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewProcessCommand(deps)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"audio", recording})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported codec")
}

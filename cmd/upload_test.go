// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewUploadCommand verifies the upload command structure.
func TestNewUploadCommand(t *testing.T) {
	deps := DefaultUploadDeps()
	cmd := NewUploadCommand(deps)

	assert.Equal(t, "upload <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "command should have short description")
	assert.NotEmpty(t, cmd.Long, "command should have long description")

	// Verify flags exist.
	chatFlag := cmd.Flags().Lookup("chat")
	require.NotNil(t, chatFlag, "chat flag should exist")
	assert.Equal(t, "bool", chatFlag.Value.Type())

	ttsFlag := cmd.Flags().Lookup("tts")
	require.NotNil(t, ttsFlag, "tts flag should exist")

	outputFlag := cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag, "output flag should exist")

	// Verify shorthand for output flag.
	outputShortFlag := cmd.Flags().ShorthandLookup("o")
	require.NotNil(t, outputShortFlag, "output flag should have shorthand -o")

	// Meeting detail flags feed the REPL's /minutes and /email.
	for _, name := range []string{"title", "date", "company"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
	}
}

// TestUploadCommand_RequiresFile verifies that a file argument is required.
func TestUploadCommand_RequiresFile(t *testing.T) {
	cmd := NewUploadCommand(DefaultUploadDeps())
	cmd.SetArgs([]string{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	assert.Error(t, err, "upload should require a file argument")
}

// TestUploadCommand_TextFlow runs the upload flow against a test backend
// and checks the progress lines and session summary.
func TestUploadCommand_TextFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transcribe-only":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":    true,
				"transcript": "John: we shipped it.",
			})
		case "/chat/start":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":    true,
				"session_id": "sess-42",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	recording := filepath.Join(t.TempDir(), "standup.mp3")
	require.NoError(t, os.WriteFile(recording, []byte("not really audio"), 0o644))

	deps := &UploadCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewUploadCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{recording})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Uploading... 0%")
	assert.Contains(t, output, "Processing... 50%")
	assert.Contains(t, output, "Done.")
	assert.Contains(t, output, "Session: sess-42")
	assert.Contains(t, output, "John: we shipped it.")
}

// TestUploadCommand_ChatMinutesDetails enters the chat session after an
// upload and checks that the meeting detail flags reach the backend when
// minutes are generated from inside the session.
func TestUploadCommand_ChatMinutesDetails(t *testing.T) {
	var gotTitle, gotCompany string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/transcribe-only":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "transcript": "John: we shipped it."})
		case r.URL.Path == "/chat/start":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "session_id": "sess-9"})
		case strings.HasSuffix(r.URL.Path, "/generate-minutes"):
			var body struct {
				Title   string `json:"meeting_title"`
				Company string `json:"company_name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			gotTitle = body.Title
			gotCompany = body.Company
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":      true,
				"pdf_file":     "minutes.pdf",
				"download_url": "/download/minutes.pdf",
			})
		case strings.HasPrefix(r.URL.Path, "/download/"):
			w.Write([]byte("%PDF-1.4 fake"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	recording := filepath.Join(t.TempDir(), "standup.mp3")
	require.NoError(t, os.WriteFile(recording, []byte("not really audio"), 0o644))
	downloadDir := t.TempDir()

	deps := &UploadCommandDeps{LoadConfig: testLoadConfig(srv.URL, downloadDir)}
	cmd := NewUploadCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader("/minutes\n/quit\n"))
	cmd.SetArgs([]string{recording, "--chat", "--title", "Sprint Review", "--company", "Acme"})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Sprint Review", gotTitle)
	assert.Equal(t, "Acme", gotCompany)
	assert.Contains(t, out.String(), "PDF Generated!")
}

// TestUploadCommand_JSONOutput checks the structured output shape.
func TestUploadCommand_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transcribe-only":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "transcript": "hello"})
		case "/chat/start":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "session_id": "sess-7"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	recording := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(recording, []byte("x"), 0o644))

	deps := &UploadCommandDeps{LoadConfig: testLoadConfig(srv.URL, t.TempDir())}
	cmd := NewUploadCommand(deps)

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{recording, "-o", "json"})

	require.NoError(t, cmd.Execute())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "sess-7", result["session_id"])
	assert.Equal(t, "hello", result["transcript"])
	assert.Equal(t, true, result["active"])
}

// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/pkg/upload"
)

// Upload command flags.
var (
	uploadChat   bool
	uploadTTS    bool
	uploadOutput string
)

// UploadCommandDeps holds the dependencies for the upload command.
type UploadCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultUploadDeps returns the default dependencies for production use.
func DefaultUploadDeps() *UploadCommandDeps {
	return &UploadCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(deps *UploadCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultUploadDeps()
	}

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a recording and start a chat session",
		Long: `Upload a meeting recording, transcribe it, and start a chat session.

The file must be a video or audio recording; the media type is derived
from the file extension. The transcript and session id are printed on
completion. With --chat, an interactive chat session opens immediately.

Flags:
  --chat              Open an interactive chat session after upload
  --tts               Voice bot replies in the chat session (implies --chat)
  --title, --date, --company   Meeting details for /minutes and /email
  -o, --output        Output format: text, json, yaml

Examples:
  mina upload standup.mp3
  mina upload all-hands.mp4 --chat
  mina upload review.wav -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, deps, args[0])
		},
	}

	cmd.Flags().BoolVar(&uploadChat, "chat", false, "Open an interactive chat session after upload")
	cmd.Flags().BoolVar(&uploadTTS, "tts", false, "Voice bot replies in the chat session")
	cmd.Flags().StringVarP(&uploadOutput, "output", "o", "", "Output format: text, json, yaml")

	// The REPL's /minutes and /email read the shared meeting detail
	// flags, so they must be registered here as well.
	cmd.Flags().StringVar(&chatTitle, "title", "", "Meeting title for /minutes and /email")
	cmd.Flags().StringVar(&chatDate, "date", "", "Meeting date for /minutes and /email")
	cmd.Flags().StringVar(&chatCompany, "company", "", "Company name for /minutes and /email")

	return cmd
}

// runUpload drives the upload flow for one recording.
func runUpload(cmd *cobra.Command, deps *UploadCommandDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()

	c := apiClient(cfg, log)
	flow := upload.New(c, log)

	out := cmd.OutOrStdout()
	format := resolveFormat(cfg, uploadOutput)
	if format == config.OutputFormatText {
		flow.OnProgress(func(p upload.Progress) {
			switch p.Status {
			case upload.StatusUploading:
				fmt.Fprintf(out, "Uploading... %d%%\n", p.Percent)
			case upload.StatusProcessing:
				fmt.Fprintf(out, "Processing... %d%%\n", p.Percent)
			case upload.StatusComplete:
				fmt.Fprintln(out, "Done.")
			}
		})
	}

	session, err := flow.Submit(cmd.Context(), filepath.Base(path), detectMediaType(path), f)
	if err != nil {
		return err
	}

	switch format {
	case config.OutputFormatJSON:
		return outputJSON(out, uploadResult(session))
	case config.OutputFormatYAML:
		return outputYAML(out, uploadResult(session))
	}

	fmt.Fprintf(out, "\nSession: %s\n", session.ID)
	if session.Transcript != "" {
		fmt.Fprintf(out, "\nTranscript:\n%s\n", session.Transcript)
	}

	if uploadChat || uploadTTS {
		return runChatREPL(cmd, cfg, log, c, session, uploadTTS)
	}

	fmt.Fprintf(out, "\nRun 'mina chat --transcript <file>' or use --chat to discuss this meeting.\n")
	return nil
}

// uploadResult shapes a session for structured output.
func uploadResult(s *upload.Session) map[string]interface{} {
	return map[string]interface{}{
		"session_id": s.ID,
		"transcript": s.Transcript,
		"active":     s.Active,
	}
}

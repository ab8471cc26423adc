// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
)

// TTS command flags.
var (
	ttsTranscript string
	ttsSession    string
	ttsDir        string
)

// TTSCommandDeps holds the dependencies for the tts command.
type TTSCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultTTSDeps returns the default dependencies for production use.
func DefaultTTSDeps() *TTSCommandDeps {
	return &TTSCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewTTSCommand creates the tts command.
func NewTTSCommand(deps *TTSCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultTTSDeps()
	}

	cmd := &cobra.Command{
		Use:   "tts <text>",
		Short: "Synthesize speech for a piece of text",
		Long: `Synthesize speech for a piece of text and download the audio.

Synthesis runs inside a chat session; --session reuses an existing
one, otherwise one is started from --transcript (or an empty
transcript when neither is given).

Flags:
  --session ID        Existing chat session id
  --transcript FILE   Transcript file for session context ("-" reads stdin)
  --dir DIR           Download directory (default from config)

Examples:
  mina tts "The meeting is at ten."
  mina tts --session sess-42 "Summarize the decisions."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTTS(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVar(&ttsTranscript, "transcript", "", "Transcript file for session context (\"-\" reads stdin)")
	cmd.Flags().StringVar(&ttsSession, "session", "", "Existing chat session id")
	cmd.Flags().StringVar(&ttsDir, "dir", "", "Download directory")
	cmd.MarkFlagsMutuallyExclusive("transcript", "session")

	return cmd
}

// runTTS synthesizes one piece of text and saves the audio.
func runTTS(cmd *cobra.Command, deps *TTSCommandDeps, text string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	c := apiClient(cfg, log)

	sessionID := ttsSession
	if sessionID == "" {
		transcript := ""
		if ttsTranscript != "" {
			transcript, err = readTranscript(ttsTranscript, cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		session, err := bootstrapFromTranscript(cmd, c, transcript)
		if err != nil {
			return err
		}
		sessionID = session.ID
	}

	resp, err := c.GenerateTTS(cmd.Context(), sessionID, text)
	if err != nil {
		return err
	}
	if !resp.Success || resp.AudioURL == "" {
		return &client.APIError{Op: "tts", Message: resp.Error}
	}

	dir := ttsDir
	if dir == "" {
		dir, err = cfg.GetDownloadDir()
		if err != nil {
			return err
		}
	}

	saved, err := c.Download(cmd.Context(), resp.AudioURL, dir)
	if err != nil {
		return fmt.Errorf("downloading audio: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved audio to %s\n", saved)
	return nil
}

// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/pkg/minutes"
)

// Minutes command flags.
var (
	minutesTranscript string
	minutesSession    string
	minutesTitle      string
	minutesDate       string
	minutesCompany    string
	minutesMessage    string
	minutesDir        string
)

// MinutesCommandDeps holds the dependencies for the minutes command.
type MinutesCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultMinutesDeps returns the default dependencies for production use.
func DefaultMinutesDeps() *MinutesCommandDeps {
	return &MinutesCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewMinutesCommand creates the minutes command.
func NewMinutesCommand(deps *MinutesCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMinutesDeps()
	}

	cmd := &cobra.Command{
		Use:   "minutes",
		Short: "Generate PDF meeting minutes from a transcript",
		Long: `Generate PDF meeting minutes from a transcript.

A chat session is started from the transcript, the backend generates
the minutes, and the PDF is downloaded to the download directory. With
--session an existing session is used instead of starting one.

Flags:
  --transcript FILE   Transcript text file ("-" reads stdin)
  --session ID        Existing chat session id
  --title TEXT        Meeting title
  --date YYYY-MM-DD   Meeting date (default: today)
  --company TEXT      Company name
  --note TEXT         Custom message included in the minutes
  --dir DIR           Download directory (default from config)

Examples:
  mina minutes --transcript meeting.txt --title "Quarterly Review"
  cat meeting.txt | mina minutes --transcript - --company Acme
  mina minutes --session sess-42 --title "Sprint Review"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinutes(cmd, deps)
		},
	}

	cmd.Flags().StringVar(&minutesTranscript, "transcript", "", "Transcript text file (\"-\" reads stdin)")
	cmd.Flags().StringVar(&minutesSession, "session", "", "Existing chat session id")
	cmd.Flags().StringVar(&minutesTitle, "title", "", "Meeting title")
	cmd.Flags().StringVar(&minutesDate, "date", "", "Meeting date (default: today)")
	cmd.Flags().StringVar(&minutesCompany, "company", "", "Company name")
	cmd.Flags().StringVar(&minutesMessage, "note", "", "Custom message included in the minutes")
	cmd.Flags().StringVar(&minutesDir, "dir", "", "Download directory")
	cmd.MarkFlagsOneRequired("transcript", "session")
	cmd.MarkFlagsMutuallyExclusive("transcript", "session")

	return cmd
}

// runMinutes generates and downloads PDF minutes for a transcript.
func runMinutes(cmd *cobra.Command, deps *MinutesCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	c := apiClient(cfg, log)

	sessionID := minutesSession
	if sessionID == "" {
		text, err := readTranscript(minutesTranscript, cmd.InOrStdin())
		if err != nil {
			return err
		}
		session, err := bootstrapFromTranscript(cmd, c, text)
		if err != nil {
			return err
		}
		sessionID = session.ID
	}

	dir := minutesDir
	if dir == "" {
		dir, err = cfg.GetDownloadDir()
		if err != nil {
			return err
		}
	}

	runner := minutes.NewRunner(c, dir, log)
	result, err := runner.Submit(cmd.Context(), minutes.ActionPDF, sessionID, minutesFormDetails(nil))
	if err != nil {
		return errors.New(minutes.FailureMessage(minutes.ActionPDF, err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\nSaved to %s\n", result.Message, result.PDFPath)
	return nil
}

// minutesFormDetails assembles the details form from the minutes/email flags.
func minutesFormDetails(recipients []string) minutes.Details {
	date := minutesDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return minutes.Details{
		Title:         minutesTitle,
		Date:          date,
		CompanyName:   minutesCompany,
		Recipients:    recipients,
		CustomMessage: minutesMessage,
	}
}

// ensure the client satisfies the runner's API surface.
var _ minutes.API = (*client.Client)(nil)

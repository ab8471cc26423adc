// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/config"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
	"github.com/scribeworks/mina-cli/pkg/minutes"
)

// Email command flags.
var (
	emailTranscript string
	emailSession    string
	emailTo         string
	emailTitle      string
	emailDate       string
	emailCompany    string
	emailMessage    string
)

// EmailCommandDeps holds the dependencies for the email command.
type EmailCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultEmailDeps returns the default dependencies for production use.
func DefaultEmailDeps() *EmailCommandDeps {
	return &EmailCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewEmailCommand creates the email command.
func NewEmailCommand(deps *EmailCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEmailDeps()
	}

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Email meeting minutes from a transcript",
		Long: `Generate meeting minutes from a transcript and email them.

A chat session is started from the transcript and the backend sends
the minutes to the given recipients. With --session an existing
session is used instead. At least one recipient is required; the
command fails locally before contacting the backend when the list
is empty.

Flags:
  --transcript FILE   Transcript text file ("-" reads stdin)
  --session ID        Existing chat session id
  --to ADDRS          Comma-separated recipient addresses (required)
  --title TEXT        Meeting title
  --date YYYY-MM-DD   Meeting date (default: today)
  --company TEXT      Company name
  --note TEXT         Custom message included in the email

Examples:
  mina email --transcript meeting.txt --to team@acme.test
  mina email --transcript meeting.txt --to "a@acme.test, b@acme.test" --title "Sprint Review"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmail(cmd, deps)
		},
	}

	cmd.Flags().StringVar(&emailTranscript, "transcript", "", "Transcript text file (\"-\" reads stdin)")
	cmd.Flags().StringVar(&emailSession, "session", "", "Existing chat session id")
	cmd.Flags().StringVar(&emailTo, "to", "", "Comma-separated recipient addresses")
	cmd.Flags().StringVar(&emailTitle, "title", "", "Meeting title")
	cmd.Flags().StringVar(&emailDate, "date", "", "Meeting date (default: today)")
	cmd.Flags().StringVar(&emailCompany, "company", "", "Company name")
	cmd.Flags().StringVar(&emailMessage, "note", "", "Custom message included in the email")
	cmd.MarkFlagsOneRequired("transcript", "session")
	cmd.MarkFlagsMutuallyExclusive("transcript", "session")

	return cmd
}

// runEmail generates minutes for a transcript and emails them.
func runEmail(cmd *cobra.Command, deps *EmailCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	recipients := splitRecipients(emailTo)
	if len(recipients) == 0 {
		return merrors.ErrMissingRecipients
	}

	c := apiClient(cfg, log)

	sessionID := emailSession
	if sessionID == "" {
		text, err := readTranscript(emailTranscript, cmd.InOrStdin())
		if err != nil {
			return err
		}
		session, err := bootstrapFromTranscript(cmd, c, text)
		if err != nil {
			return err
		}
		sessionID = session.ID
	}

	date := emailDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	details := minutes.Details{
		Title:         emailTitle,
		Date:          date,
		CompanyName:   emailCompany,
		Recipients:    recipients,
		CustomMessage: emailMessage,
	}

	runner := minutes.NewRunner(c, "", log)
	result, err := runner.Submit(cmd.Context(), minutes.ActionEmail, sessionID, details)
	if err != nil {
		return errors.New(minutes.FailureMessage(minutes.ActionEmail, err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Sent to %s\n", result.Message, strings.Join(recipients, ", "))
	return nil
}

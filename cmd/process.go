// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
)

// Process command flags.
var (
	processTo       string
	processTitle    string
	processDate     string
	processCompany  string
	processNote     string
	processDownload bool
	processOutput   string
)

// ProcessCommandDeps holds the dependencies for the process commands.
type ProcessCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultProcessDeps returns the default dependencies for production use.
func DefaultProcessDeps() *ProcessCommandDeps {
	return &ProcessCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewProcessCommand creates the process command group.
func NewProcessCommand(deps *ProcessCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultProcessDeps()
	}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the full processing pipeline",
		Long: `Run the full processing pipeline on a recording or transcript.

The pipeline transcribes (for recordings), generates PDF minutes, and
optionally emails them in one request. For the step-by-step flow, use
'mina upload' and 'mina chat' instead.

This command provides three operations:

  video       Process a video recording
  audio       Process an audio recording
  transcript  Process raw transcript text

Examples:
  mina process video all-hands.mp4 --title "All Hands"
  mina process audio standup.mp3 --to team@acme.test
  mina process transcript meeting.txt --download`,
	}

	cmd.AddCommand(newProcessVideoCommand(deps))
	cmd.AddCommand(newProcessAudioCommand(deps))
	cmd.AddCommand(newProcessTranscriptCommand(deps))

	cmd.PersistentFlags().StringVar(&processTo, "to", "", "Comma-separated recipient addresses for email dispatch")
	cmd.PersistentFlags().StringVar(&processTitle, "title", "", "Meeting title")
	cmd.PersistentFlags().StringVar(&processDate, "date", "", "Meeting date (default: today)")
	cmd.PersistentFlags().StringVar(&processCompany, "company", "", "Company name")
	cmd.PersistentFlags().StringVar(&processNote, "note", "", "Custom message included in the minutes")
	cmd.PersistentFlags().BoolVar(&processDownload, "download", false, "Download the generated PDF")
	cmd.PersistentFlags().StringVarP(&processOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// newProcessVideoCommand creates the 'process video' subcommand.
func newProcessVideoCommand(deps *ProcessCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "video <file>",
		Short: "Process a video recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcessMedia(cmd, deps, args[0], true)
		},
	}
}

// newProcessAudioCommand creates the 'process audio' subcommand.
func newProcessAudioCommand(deps *ProcessCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "audio <file>",
		Short: "Process an audio recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcessMedia(cmd, deps, args[0], false)
		},
	}
}

// newProcessTranscriptCommand creates the 'process transcript' subcommand.
func newProcessTranscriptCommand(deps *ProcessCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <file>",
		Short: "Process raw transcript text (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcessTranscript(cmd, deps, args[0])
		},
	}
}

// runProcessMedia submits a recording to the one-shot pipeline.
func runProcessMedia(cmd *cobra.Command, deps *ProcessCommandDeps, path string, video bool) error {
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
	recipients := splitRecipients(processTo)
	meeting := processMeetingFields()

	var resp *client.ProcessResponse
	if video {
		resp, err = c.ProcessVideo(cmd.Context(), filepath.Base(path), f, recipients, meeting)
	} else {
		resp, err = c.ProcessAudio(cmd.Context(), filepath.Base(path), f, recipients, meeting)
	}
	if err != nil {
		return err
	}

	return reportProcessResult(cmd, cfg, c, resp)
}

// runProcessTranscript submits transcript text to the one-shot pipeline.
func runProcessTranscript(cmd *cobra.Command, deps *ProcessCommandDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	text, err := readTranscript(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	c := apiClient(cfg, log)
	resp, err := c.ProcessTranscript(cmd.Context(), text, splitRecipients(processTo), processMeetingFields())
	if err != nil {
		return err
	}

	return reportProcessResult(cmd, cfg, c, resp)
}

// processMeetingFields assembles the meeting metadata from the flags.
func processMeetingFields() client.MeetingFields {
	date := processDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return client.MeetingFields{
		Title:         processTitle,
		Date:          date,
		CompanyName:   processCompany,
		CustomMessage: processNote,
	}
}

// reportProcessResult renders a pipeline response and optionally
// downloads the generated PDF.
func reportProcessResult(cmd *cobra.Command, cfg *config.CLIConfig, c *client.Client, resp *client.ProcessResponse) error {
	if !resp.Success {
		return &client.APIError{Op: "process", Message: resp.Error}
	}

	out := cmd.OutOrStdout()

	switch resolveFormat(cfg, processOutput) {
	case config.OutputFormatJSON:
		return outputJSON(out, resp)
	case config.OutputFormatYAML:
		return outputYAML(out, resp)
	}

	fmt.Fprintln(out, "Processing complete.")
	if resp.SessionID != "" {
		fmt.Fprintf(out, "  Session:   %s\n", resp.SessionID)
	}
	if resp.PDFFile != "" {
		fmt.Fprintf(out, "  Minutes:   %s\n", resp.PDFFile)
	}
	if resp.ProcessingTime > 0 {
		fmt.Fprintf(out, "  Duration:  %.1fs\n", resp.ProcessingTime)
	}
	if resp.EmailSent {
		fmt.Fprintln(out, "  Email:     sent")
	}
	if resp.Transcript != "" {
		fmt.Fprintf(out, "\nTranscript:\n%s\n", strings.TrimSpace(resp.Transcript))
	}

	if processDownload && resp.DownloadURL != "" {
		dir, err := cfg.GetDownloadDir()
		if err != nil {
			return err
		}
		saved, err := c.Download(cmd.Context(), resp.DownloadURL, dir)
		if err != nil {
			return fmt.Errorf("downloading minutes: %w", err)
		}
		fmt.Fprintf(out, "\nSaved to %s\n", saved)
	}

	return nil
}

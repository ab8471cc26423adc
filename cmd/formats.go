// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
)

// Formats command flags.
var formatsOutput string

// FormatsCommandDeps holds the dependencies for the formats command.
type FormatsCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultFormatsDeps returns the default dependencies for production use.
func DefaultFormatsDeps() *FormatsCommandDeps {
	return &FormatsCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewFormatsCommand creates the formats command.
func NewFormatsCommand(deps *FormatsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultFormatsDeps()
	}

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List media formats the backend accepts",
		Long: `List the video and audio formats the backend accepts for upload,
and the maximum file size.

Examples:
  mina formats
  mina formats -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormats(cmd, deps)
		},
	}

	cmd.Flags().StringVarP(&formatsOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// runFormats fetches and renders the supported formats.
func runFormats(cmd *cobra.Command, deps *FormatsCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	c := apiClient(cfg, log)
	resp, err := c.SupportedFormats(cmd.Context())
	if err != nil {
		return err
	}
	if !resp.Success {
		return &client.APIError{Op: "supported-formats", Message: resp.Error}
	}

	out := cmd.OutOrStdout()

	switch resolveFormat(cfg, formatsOutput) {
	case config.OutputFormatJSON:
		return outputJSON(out, resp)
	case config.OutputFormatYAML:
		return outputYAML(out, resp)
	}

	fmt.Fprintf(out, "Video: %s\n", strings.Join(resp.VideoFormats, ", "))
	fmt.Fprintf(out, "Audio: %s\n", strings.Join(resp.AudioFormats, ", "))
	if resp.MaxFileSizeMB > 0 {
		fmt.Fprintf(out, "Max file size: %d MB\n", resp.MaxFileSizeMB)
	}
	return nil
}

// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/config"
)

// Health command flags.
var healthOutput string

// HealthCommandDeps holds the dependencies for the health command.
type HealthCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultHealthDeps returns the default dependencies for production use.
func DefaultHealthDeps() *HealthCommandDeps {
	return &HealthCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewHealthCommand creates the health command.
func NewHealthCommand(deps *HealthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultHealthDeps()
	}

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check backend availability",
		Long: `Check whether the meeting assistant backend is reachable.

An unhealthy backend is reported, not treated as a command failure.

Examples:
  mina health
  mina health -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, deps)
		},
	}

	cmd.Flags().StringVarP(&healthOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// runHealth performs the backend availability check.
func runHealth(cmd *cobra.Command, deps *HealthCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	c := apiClient(cfg, log)
	healthErr := c.Health(cmd.Context())

	out := cmd.OutOrStdout()

	type report struct {
		Server  string `json:"server" yaml:"server"`
		Healthy bool   `json:"healthy" yaml:"healthy"`
		Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	}
	r := report{Server: cfg.ServerURL, Healthy: healthErr == nil}
	if healthErr != nil {
		r.Error = healthErr.Error()
	}

	switch resolveFormat(cfg, healthOutput) {
	case config.OutputFormatJSON:
		return outputJSON(out, r)
	case config.OutputFormatYAML:
		return outputYAML(out, r)
	}

	if healthErr != nil {
		fmt.Fprintln(out, "Backend status: UNHEALTHY")
		fmt.Fprintf(out, "  Server: %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "  Error:  %s\n", healthErr)
		return nil
	}

	fmt.Fprintln(out, "Backend status: HEALTHY")
	fmt.Fprintf(out, "  Server: %s\n", cfg.ServerURL)
	return nil
}

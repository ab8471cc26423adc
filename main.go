// Package main provides the mina CLI entry point.
// mina is the command-line interface for the Mina meeting assistant.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribeworks/mina-cli/cmd"
	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/pkg/buildinfo"
)

// Global flags.
var (
	serverURL     string
	timeout       time.Duration
	outputFormat  string
	debug         bool
	noDiagnostics bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mina",
	Short: "Mina CLI - meeting assistant interface",
	Long: `mina is the command-line interface for the Mina meeting assistant.

Mina turns meeting recordings and transcripts into chat sessions,
PDF minutes, and emailed summaries via the Mina backend.

COMMON WORKFLOWS:
  Discuss a meeting:  mina upload standup.mp3 --chat  |  mina chat --transcript notes.txt
  Generate minutes:   mina minutes --transcript notes.txt --title "Sprint Review"
  Email minutes:      mina email --transcript notes.txt --to team@acme.test
  Full pipeline:      mina process video all-hands.mp4 --to team@acme.test
  Check backend:      mina health, then mina formats

DISCOVERY:
  mina <command> --help       Subcommands, flags, and examples for any command
  mina config show            Current configuration
  mina auth status            Active API credential`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip for commands that never touch the backend or config.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		// Commands load configuration independently; global flags are
		// exported as environment overrides so every load sees them.
		if serverURL != "" {
			os.Setenv("MINA_SERVER_URL", serverURL)
		}
		if timeout != 0 {
			os.Setenv("MINA_TIMEOUT", timeout.String())
		}
		if outputFormat != "" {
			format := config.OutputFormat(outputFormat)
			if !format.IsValid() {
				return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", outputFormat)
			}
			os.Setenv("MINA_OUTPUT_FORMAT", outputFormat)
		}
		if debug {
			os.Setenv("MINA_DEBUG", "1")
		}
		if noDiagnostics {
			os.Setenv("MINA_DIAGNOSTICS_DISABLED", "1")
		}

		return nil
	},
}

// Version command flags.
var versionOutputJSON bool

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of the mina CLI.

Examples:
  mina version
  mina version --output-json`,
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get("mina-cli")
		out := c.OutOrStdout()

		if versionOutputJSON {
			return outputJSONTo(out, info)
		}

		fmt.Fprintf(out, "mina version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		return nil
	},
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `View and modify the mina CLI configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current CLI configuration values.`,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		configPath, _ := config.ConfigPath()
		out := c.OutOrStdout()

		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintf(out, "  Config file:   %s\n", configPath)
		fmt.Fprintf(out, "  Server URL:    %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "  Timeout:       %s\n", cfg.Timeout)
		fmt.Fprintf(out, "  Output format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "  Download dir:  %s\n", valueOrDefault(cfg.DownloadDir, "(current directory)"))
		fmt.Fprintf(out, "  TTS enabled:   %t\n", cfg.TTSEnabled)
		fmt.Fprintf(out, "  Debug:         %t\n", cfg.Debug)
		fmt.Fprintf(out, "  Diagnostics:   %t\n", !cfg.DiagnosticsDisabled)

		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(c *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		out := c.OutOrStdout()

		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
			fmt.Fprintln(out, "Use 'mina config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
		fmt.Fprintln(out, "\nDefault settings:")
		fmt.Fprintf(out, "  Server URL:    %s\n", defaultCfg.ServerURL)
		fmt.Fprintf(out, "  Timeout:       %s\n", defaultCfg.Timeout)
		fmt.Fprintf(out, "  Output format: %s\n", defaultCfg.OutputFormat)

		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  server_url            - Backend server URL (http://host:port)
  timeout               - Request timeout (e.g., 30s, 1m; 0 disables)
  output_format         - Default output format (text, json, yaml)
  download_dir          - Directory for generated PDFs and audio (supports ~)
  tts_enabled           - Voice bot replies in chat (true/false)
  debug                 - Enable debug mode (true/false)
  diagnostics_disabled  - Turn off the diagnostic log (true/false)

Examples:
  mina config set server_url http://localhost:5000
  mina config set timeout 1m
  mina config set output_format json
  mina config set download_dir ~/Documents/minutes
  mina config set tts_enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			currentCfg = config.DefaultConfig()
		}

		switch key {
		case "server_url":
			currentCfg.ServerURL = value
		case "timeout":
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			currentCfg.Timeout = duration
		case "output_format":
			format := config.OutputFormat(value)
			if !format.IsValid() {
				return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", value)
			}
			currentCfg.OutputFormat = format
		case "download_dir":
			expanded, err := config.ExpandPath(value)
			if err != nil {
				return fmt.Errorf("invalid download dir: %w", err)
			}
			// Store the original value (with ~) for readability.
			currentCfg.DownloadDir = value
			fmt.Fprintf(c.OutOrStdout(), "  (expands to: %s)\n", expanded)
		case "tts_enabled":
			b, err := parseBool(value)
			if err != nil {
				return fmt.Errorf("invalid tts_enabled value: %s (must be true or false)", value)
			}
			currentCfg.TTSEnabled = b
		case "debug":
			b, err := parseBool(value)
			if err != nil {
				return fmt.Errorf("invalid debug value: %s (must be true or false)", value)
			}
			currentCfg.Debug = b
		case "diagnostics_disabled":
			b, err := parseBool(value)
			if err != nil {
				return fmt.Errorf("invalid diagnostics_disabled value: %s (must be true or false)", value)
			}
			currentCfg.DiagnosticsDisabled = b
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := currentCfg.Validate(); err != nil {
			return err
		}

		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(c.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for mina.

To load completions:

Bash:
  $ source <(mina completion bash)

Zsh:
  $ mina completion zsh > "${fpath[1]}/_mina"

Fish:
  $ mina completion fish | source

PowerShell:
  PS> mina completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(c *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// outputJSONTo writes v as indented JSON to w.
func outputJSONTo(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBool parses the true/false forms accepted by config set.
func parseBool(value string) (bool, error) {
	switch value {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %s", value)
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend server URL (http://host:port)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (e.g., 30s, 1m; default none)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noDiagnostics, "no-diagnostics", false, "disable the diagnostic log")

	// Add command groups for organized help output.
	rootCmd.AddGroup(
		&cobra.Group{ID: "meetings", Title: "Meetings:"},
		&cobra.Group{ID: "ops", Title: "Operations:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	// Meetings
	uploadCmd := cmd.NewUploadCommand(nil)
	uploadCmd.GroupID = "meetings"
	rootCmd.AddCommand(uploadCmd)

	chatCmd := cmd.NewChatCommand(nil)
	chatCmd.GroupID = "meetings"
	rootCmd.AddCommand(chatCmd)

	minutesCmd := cmd.NewMinutesCommand(nil)
	minutesCmd.GroupID = "meetings"
	rootCmd.AddCommand(minutesCmd)

	emailCmd := cmd.NewEmailCommand(nil)
	emailCmd.GroupID = "meetings"
	rootCmd.AddCommand(emailCmd)

	processCmd := cmd.NewProcessCommand(nil)
	processCmd.GroupID = "meetings"
	rootCmd.AddCommand(processCmd)

	ttsCmd := cmd.NewTTSCommand(nil)
	ttsCmd.GroupID = "meetings"
	rootCmd.AddCommand(ttsCmd)

	// Operations
	healthCmd := cmd.NewHealthCommand(nil)
	healthCmd.GroupID = "ops"
	rootCmd.AddCommand(healthCmd)

	formatsCmd := cmd.NewFormatsCommand(nil)
	formatsCmd.GroupID = "ops"
	rootCmd.AddCommand(formatsCmd)

	// Setup
	authCmd := cmd.NewAuthCommand(nil)
	authCmd.GroupID = "setup"
	rootCmd.AddCommand(authCmd)

	configCmd.GroupID = "setup"
	rootCmd.AddCommand(configCmd)

	completionCmd.GroupID = "setup"
	rootCmd.AddCommand(completionCmd)

	versionCmd.GroupID = "setup"
	versionCmd.Flags().BoolVar(&versionOutputJSON, "output-json", false, "Output as JSON")
	rootCmd.AddCommand(versionCmd)

	// Config subcommands.
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}

func main() {
	// Set up signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/credentials"
)

// Auth command flags.
var (
	authAPIKey string
	authServer string
)

// AuthCommandDeps holds the dependencies for the auth commands.
type AuthCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	NewStore   func() (*credentials.Store, error)
}

// DefaultAuthDeps returns the default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		LoadConfig: loadConfigWithKey,
		NewStore:   credentials.NewStore,
	}
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage backend API credentials",
		Long: `Manage the API key used to authenticate against the backend.

The key is encrypted at rest with a key from the system keyring, or
from MINA_ENCRYPTION_KEY where no keyring is available. A key set via
the MINA_API_KEY environment variable always takes precedence over
stored credentials.

This command provides three operations:

  login    Store an API key
  status   Show the active credential
  logout   Remove stored credentials

Examples:
  mina auth login
  mina auth login --api-key mk-1234abcd
  mina auth status
  mina auth logout`,
	}

	cmd.AddCommand(newAuthLoginCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	cmd.AddCommand(newAuthLogoutCommand(deps))

	return cmd
}

// newAuthLoginCommand creates the 'auth login' subcommand.
func newAuthLoginCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long: `Store an API key for the configured backend.

The key is read from --api-key when given, otherwise prompted for
without echo.

Flags:
  --api-key KEY   API key (prompted when omitted)
  --server URL    Backend the key is for (default from config)

Examples:
  mina auth login
  mina auth login --api-key mk-1234abcd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd, deps)
		},
	}

	cmd.Flags().StringVar(&authAPIKey, "api-key", "", "API key (prompted when omitted)")
	cmd.Flags().StringVar(&authServer, "server", "", "Backend the key is for")

	return cmd
}

// newAuthStatusCommand creates the 'auth status' subcommand.
func newAuthStatusCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd, deps)
		},
	}
}

// newAuthLogoutCommand creates the 'auth logout' subcommand.
func newAuthLogoutCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd, deps)
		},
	}
}

// runAuthLogin stores an API key, prompting when not given as a flag.
func runAuthLogin(cmd *cobra.Command, deps *AuthCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	key := strings.TrimSpace(authAPIKey)
	if key == "" {
		key, err = promptAPIKey(cmd)
		if err != nil {
			return err
		}
	}
	if key == "" {
		return errors.New("API key must not be empty")
	}

	server := authServer
	if server == "" {
		server = cfg.ServerURL
	}

	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	creds := &credentials.Credentials{
		APIKey:      key,
		ServerURL:   server,
		LastUpdated: time.Now(),
	}
	if err := store.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored API key %s for %s\n",
		credentials.MaskAPIKey(key), server)
	return nil
}

// runAuthStatus reports which credential would be used and where it
// comes from.
func runAuthStatus(cmd *cobra.Command, deps *AuthCommandDeps) error {
	out := cmd.OutOrStdout()

	if key := os.Getenv("MINA_API_KEY"); key != "" {
		fmt.Fprintln(out, "Source:  MINA_API_KEY environment variable")
		fmt.Fprintf(out, "API key: %s\n", credentials.MaskAPIKey(key))
		return nil
	}

	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	creds, err := store.Load()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredentials) {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Fprintln(out, "Source:  stored credentials")
	fmt.Fprintf(out, "API key: %s\n", credentials.MaskAPIKey(creds.APIKey))
	if creds.ServerURL != "" {
		fmt.Fprintf(out, "Server:  %s\n", creds.ServerURL)
	}
	if !creds.LastUpdated.IsZero() {
		fmt.Fprintf(out, "Updated: %s\n", creds.LastUpdated.Format(time.RFC3339))
	}
	return nil
}

// runAuthLogout deletes any stored credentials.
func runAuthLogout(cmd *cobra.Command, deps *AuthCommandDeps) error {
	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	existed := store.Exists()
	if err := store.Delete(); err != nil {
		return fmt.Errorf("removing credentials: %w", err)
	}

	if existed {
		fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored credentials.")
	}
	return nil
}

// promptAPIKey reads an API key from the terminal without echo. When
// stdin is not a terminal the key is read as a single line instead.
func promptAPIKey(cmd *cobra.Command) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

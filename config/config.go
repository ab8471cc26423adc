// Package config provides CLI configuration management for the mina
// command-line tool. It supports loading configuration from a YAML file,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	// DefaultServerURL is the development backend origin. Deployments
	// behind the same origin as the backend set server_url explicitly.
	DefaultServerURL = "http://localhost:5000"

	// DefaultTimeout is zero: requests carry no client-side deadline,
	// because transcribing a long recording can run for many minutes.
	// Setting timeout caps requests for users who want one.
	DefaultTimeout time.Duration = 0

	DefaultOutputFormat   = OutputFormatText
	DefaultConfigDir      = ".mina"
	DefaultConfigFile     = "config.yaml"
	DefaultDiagnosticsLog = "diagnostics.log"
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// ServerURL is the backend origin (scheme://host:port).
	ServerURL string `yaml:"server_url"`

	// Timeout is the per-request timeout. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// DownloadDir is where generated PDFs and synthesized audio are saved.
	// Defaults to the current working directory.
	DownloadDir string `yaml:"download_dir,omitempty"`

	// TTSEnabled plays back bot replies as synthesized audio in chat.
	TTSEnabled bool `yaml:"tts_enabled,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// DiagnosticsDisabled turns off the diagnostic log mirror.
	DiagnosticsDisabled bool `yaml:"diagnostics_disabled,omitempty"`

	// APIKey is the optional backend API key. It is resolved from the
	// credential store or MINA_API_KEY, never from the config file.
	APIKey string `yaml:"-"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		ServerURL:    DefaultServerURL,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MINA_CONFIG_DIR if set, otherwise ~/.mina
func ConfigDir() (string, error) {
	if dir := os.Getenv("MINA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// DiagnosticsPath returns the full path to the diagnostic log sink file.
func DiagnosticsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultDiagnosticsLog), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.mina/config.yaml or $MINA_CONFIG_DIR/config.yaml)
// 3. Environment variables (MINA_SERVER_URL, MINA_TIMEOUT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// A temp struct unmarshals the duration as a string.
	type configFile struct {
		ServerURL           string       `yaml:"server_url"`
		Timeout             string       `yaml:"timeout"`
		OutputFormat        OutputFormat `yaml:"output_format"`
		DownloadDir         string       `yaml:"download_dir"`
		TTSEnabled          bool         `yaml:"tts_enabled"`
		Debug               bool         `yaml:"debug"`
		DiagnosticsDisabled bool         `yaml:"diagnostics_disabled"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ServerURL != "" {
		cfg.ServerURL = fileCfg.ServerURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.DownloadDir != "" {
		cfg.DownloadDir = fileCfg.DownloadDir
	}
	cfg.TTSEnabled = fileCfg.TTSEnabled
	cfg.Debug = fileCfg.Debug
	cfg.DiagnosticsDisabled = fileCfg.DiagnosticsDisabled

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("MINA_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if v := os.Getenv("MINA_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("MINA_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("MINA_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}

	if v := os.Getenv("MINA_TTS_ENABLED"); v == "true" || v == "1" {
		cfg.TTSEnabled = true
	}

	if v := os.Getenv("MINA_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("MINA_DIAGNOSTICS_DISABLED"); v == "true" || v == "1" {
		cfg.DiagnosticsDisabled = true
	}

	if v := os.Getenv("MINA_API_KEY"); v != "" {
		cfg.APIKey = v
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server_url must start with http:// or https://")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// GetDownloadDir returns the expanded download directory, defaulting to
// the current working directory.
func (c *CLIConfig) GetDownloadDir() (string, error) {
	if c.DownloadDir == "" {
		return os.Getwd()
	}
	return ExpandPath(c.DownloadDir)
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// YAML-friendly format with the duration as a string.
	type configFile struct {
		ServerURL           string       `yaml:"server_url"`
		Timeout             string       `yaml:"timeout"`
		OutputFormat        OutputFormat `yaml:"output_format"`
		DownloadDir         string       `yaml:"download_dir,omitempty"`
		TTSEnabled          bool         `yaml:"tts_enabled,omitempty"`
		Debug               bool         `yaml:"debug,omitempty"`
		DiagnosticsDisabled bool         `yaml:"diagnostics_disabled,omitempty"`
	}

	fileCfg := configFile{
		ServerURL:           cfg.ServerURL,
		Timeout:             cfg.Timeout.String(),
		OutputFormat:        cfg.OutputFormat,
		DownloadDir:         cfg.DownloadDir,
		TTSEnabled:          cfg.TTSEnabled,
		Debug:               cfg.Debug,
		DiagnosticsDisabled: cfg.DiagnosticsDisabled,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

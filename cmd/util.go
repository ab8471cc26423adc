// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/credentials"
	"github.com/scribeworks/mina-cli/pkg/logging"
)

// loadConfigWithKey loads the CLI configuration and resolves the API key
// from the credential store when the environment did not supply one.
func loadConfigWithKey() (*config.CLIConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		store, err := credentials.NewStore()
		if err == nil {
			if creds, err := store.GetActiveCredential(); err == nil {
				cfg.APIKey = creds.APIKey
			}
		}
	}

	return cfg, nil
}

// newLogger builds the command logger: console output plus the diagnostic
// log mirror under the config directory unless disabled. The returned
// cleanup drains the sink and must run before the process exits.
func newLogger(cfg *config.CLIConfig) (logging.Logger, func()) {
	lcfg := logging.DefaultConfig()
	lcfg.ServiceName = "mina"
	if cfg.Debug {
		lcfg.Level = logging.LevelDebug
	}

	var sink *logging.FileSink
	if !cfg.DiagnosticsDisabled {
		if path, err := config.DiagnosticsPath(); err == nil {
			if s, err := logging.NewFileSink(logging.FileSinkConfig{Path: path}); err == nil {
				sink = s
				lcfg.Sinks = []logging.Sink{s}
			}
		}
	}

	cleanup := func() {
		if sink != nil {
			sink.Close()
		}
	}
	return logging.NewLogger(lcfg), cleanup
}

// resolveFormat picks the output format: the flag wins over the config.
func resolveFormat(cfg *config.CLIConfig, flag string) config.OutputFormat {
	if flag != "" {
		return config.OutputFormat(flag)
	}
	return cfg.OutputFormat
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v as YAML.
func outputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// detectMediaType resolves the declared media type for a recording from
// its file extension.
func detectMediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	// Common recording formats first; mime.TypeByExtension is platform
	// dependent for several of these.
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	}

	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// splitRecipients parses a comma-separated recipient list, trimming
// whitespace and dropping empties.
func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// readTranscript loads transcript text from a file, or from stdin when
// path is "-".
func readTranscript(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading transcript file: %w", err)
	}
	return string(data), nil
}

// apiClient builds the backend client from the loaded config.
func apiClient(cfg *config.CLIConfig, log logging.Logger) *client.Client {
	return client.NewFromConfig(cfg, log)
}

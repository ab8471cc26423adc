// Package client provides the HTTP client for the meeting-assistant backend.
// It wraps the JSON and multipart request primitives, classifies transport
// failures into a small error taxonomy, and mirrors every call to the
// diagnostic log sink.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/pkg/logging"
)

// Default client settings.
const (
	// DefaultBaseURL is the development backend origin. A production build
	// configures its own origin through config or MINA_SERVER_URL.
	DefaultBaseURL = "http://localhost:5000"
)

// Client issues requests against a single configurable base origin.
// Every call is fire-once: no retries, no caching. The caller owns retry
// policy (there is none in this client).
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
	apiKey     string
}

// Options configures the Client behavior.
type Options struct {
	// BaseURL is the backend origin, without a trailing slash.
	BaseURL string

	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration

	// Logger receives the diagnostic mirror of every call. Nil disables
	// mirroring.
	Logger logging.Logger

	// APIKey, when set, is attached to every request as a bearer token.
	APIKey string

	// HTTPClient overrides the underlying http.Client. Used in tests.
	HTTPClient *http.Client
}

// New creates a new Client with the given options.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
		apiKey:     opts.APIKey,
	}
}

// NewFromConfig creates a Client from CLI configuration.
// This is the canonical way to create a client from CLI commands.
func NewFromConfig(cfg *config.CLIConfig, log logging.Logger) *Client {
	return New(Options{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.Timeout,
		Logger:  log,
		APIKey:  cfg.APIKey,
	})
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request issues a JSON request and decodes the response into out.
// A non-2xx status fails with a TransportError carrying the status code and
// response body text. Network-level failures are classified into a
// RequestError before propagation.
func (c *Client) Request(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, out, true)
}

// FormFile describes one file part of a multipart upload.
type FormFile struct {
	// FieldName is the multipart field, e.g. "audio_file".
	FieldName string
	// FileName is the name reported to the backend.
	FileName string
	// Reader supplies the file content.
	Reader io.Reader
}

// FormRequest issues a multipart POST with the given fields and files.
// Failure classification matches Request, except a non-2xx status carries
// the status code only (no body capture on the upload path).
func (c *Client) FormRequest(ctx context.Context, path string, fields map[string]string, files []FormFile, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("writing form field %s: %w", key, err)
		}
	}
	for _, file := range files {
		part, err := w.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return fmt.Errorf("creating form file %s: %w", file.FieldName, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return fmt.Errorf("copying form file %s: %w", file.FieldName, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, path, out, false)
}

// do executes the request, classifies failures, decodes JSON responses,
// and mirrors the call to the diagnostic sink. The mirror is best-effort
// and never affects control flow.
func (c *Client) do(req *http.Request, path string, out interface{}, captureBody bool) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log := c.log.WithContext(req.Context())
	start := time.Now()
	log.Debug("api request",
		logging.F("method", req.Method),
		logging.F("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classify(err)
		log.Error("api request failed",
			logging.F("method", req.Method),
			logging.F("path", path),
			logging.F("kind", classified.Kind.String()),
			logging.Err(err))
		return classified
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &TransportError{StatusCode: resp.StatusCode}
		if captureBody {
			body, _ := io.ReadAll(resp.Body)
			te.Body = strings.TrimSpace(string(body))
		}
		log.Error("api request failed",
			logging.F("method", req.Method),
			logging.F("path", path),
			logging.F("status", resp.StatusCode))
		return te
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Error("api response decode failed",
				logging.F("path", path),
				logging.Err(err))
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	log.Info("api request",
		logging.F("method", req.Method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("duration", time.Since(start)))

	return nil
}

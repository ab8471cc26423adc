// Package minutes implements the meeting actions: generating PDF minutes
// and emailing them, with the shared meeting-details form behind both.
package minutes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scribeworks/mina-cli/client"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
	"github.com/scribeworks/mina-cli/pkg/logging"
)

// Action selects which meeting action to run.
type Action string

const (
	ActionPDF   Action = "pdf"
	ActionEmail Action = "email"
)

// DefaultPDFName is the saved filename when the backend names neither the
// generated file nor the download path.
const DefaultPDFName = "meeting_minutes.pdf"

// AutoCloseDelay is how long callers hold the success confirmation on
// screen before returning to the session.
const AutoCloseDelay = time.Second

// Details is the meeting-details form shared by both actions. Recipients
// are only consulted for the email action.
type Details struct {
	Title         string
	Date          string
	CompanyName   string
	Recipients    []string
	CustomMessage string
}

// Result is the outcome of a successful action.
type Result struct {
	Action  Action
	Message string
	PDFPath string
}

// API is the backend surface the runner needs.
type API interface {
	GenerateMinutes(ctx context.Context, sessionID string, details client.MeetingDetails) (*client.PDFResponse, error)
	SendEmail(ctx context.Context, sessionID string, details client.MeetingDetails) (*client.EmailResponse, error)
	Download(ctx context.Context, urlPath, destDir string) (string, error)
}

// Runner executes meeting actions against one session.
type Runner struct {
	api         API
	log         logging.Logger
	downloadDir string
}

// NewRunner creates a Runner saving PDFs under downloadDir.
func NewRunner(api API, downloadDir string, log logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{api: api, log: log, downloadDir: downloadDir}
}

// Submit runs one action. Email with no recipients fails locally before
// any network traffic.
func (r *Runner) Submit(ctx context.Context, action Action, sessionID string, details Details) (*Result, error) {
	switch action {
	case ActionPDF:
		return r.generatePDF(ctx, sessionID, details)
	case ActionEmail:
		return r.sendEmail(ctx, sessionID, details)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func (r *Runner) generatePDF(ctx context.Context, sessionID string, details Details) (*Result, error) {
	resp, err := r.api.GenerateMinutes(ctx, sessionID, wireDetails(details))
	if err != nil {
		r.log.Error("minutes generation failed", logging.F("session_id", sessionID), logging.Err(err))
		return nil, err
	}
	if !resp.Success || resp.DownloadURL == "" {
		msg := resp.Error
		if msg == "" {
			msg = "Failed to generate PDF"
		}
		r.log.Error("minutes generation rejected", logging.F("session_id", sessionID), logging.F("reason", msg))
		return nil, &client.APIError{Op: "generate-minutes", Message: msg}
	}

	saved, err := r.api.Download(ctx, resp.DownloadURL, r.downloadDir)
	if err != nil {
		r.log.Error("minutes download failed", logging.F("session_id", sessionID), logging.Err(err))
		return nil, fmt.Errorf("downloading minutes: %w", err)
	}

	// The saved name follows the generated file, then the download path,
	// then the generic default.
	if want := pdfFilename(resp); filepath.Base(saved) != want {
		renamed := filepath.Join(filepath.Dir(saved), want)
		if err := os.Rename(saved, renamed); err == nil {
			saved = renamed
		}
	}

	r.log.Info("minutes generated", logging.F("session_id", sessionID), logging.F("path", saved))

	return &Result{Action: ActionPDF, Message: "PDF Generated!", PDFPath: saved}, nil
}

func (r *Runner) sendEmail(ctx context.Context, sessionID string, details Details) (*Result, error) {
	if len(details.Recipients) == 0 {
		return nil, merrors.ErrMissingRecipients
	}

	resp, err := r.api.SendEmail(ctx, sessionID, wireDetails(details))
	if err != nil {
		r.log.Error("email dispatch failed", logging.F("session_id", sessionID), logging.Err(err))
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "Failed to send email"
		}
		r.log.Error("email dispatch rejected", logging.F("session_id", sessionID), logging.F("reason", msg))
		return nil, &client.APIError{Op: "send-email", Message: msg}
	}

	r.log.Info("minutes emailed",
		logging.F("session_id", sessionID),
		logging.F("recipients", strings.Join(details.Recipients, ",")))

	return &Result{Action: ActionEmail, Message: "Email Sent!"}, nil
}

// pdfFilename picks the saved name: the generated file's base name, then
// the download path's, then DefaultPDFName.
func pdfFilename(resp *client.PDFResponse) string {
	if resp.PDFFile != "" {
		if name := filepath.Base(resp.PDFFile); name != "." && name != "/" {
			return name
		}
	}
	if resp.DownloadURL != "" {
		if name := filepath.Base(resp.DownloadURL); name != "." && name != "/" {
			return name
		}
	}
	return DefaultPDFName
}

// wireDetails maps the form onto the backend's field names.
func wireDetails(d Details) client.MeetingDetails {
	return client.MeetingDetails{
		Title:         d.Title,
		Date:          d.Date,
		CompanyName:   d.CompanyName,
		Recipients:    d.Recipients,
		CustomMessage: d.CustomMessage,
	}
}

// FailureMessage renders an action failure for the user. The error kind
// drives the wording; the configuration case matches on the backend's
// message text because it arrives inside a success:false envelope.
func FailureMessage(action Action, err error) string {
	prefix := "Failed to generate PDF: "
	if action == ActionEmail {
		prefix = "Failed to send email: "
	}

	switch {
	case client.IsExtensionInterference(err):
		return prefix + "Browser extension detected. Please disable extensions and try again."
	case strings.Contains(err.Error(), "Email configuration incomplete"):
		return prefix + "Email is not configured. Please set up email settings in the server configuration."
	case client.IsNetworkUnavailable(err):
		return prefix + "Cannot connect to server. Please check if the server is running."
	default:
		return prefix + err.Error()
	}
}

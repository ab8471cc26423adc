// Package errors provides common domain error types for the mina CLI.
//
// This package defines sentinel errors for domain conditions like "unsupported
// media type" or "missing recipients" that can be used across all packages.
// Using typed errors enables consistent error handling patterns with
// errors.Is() checks.
//
// Usage:
//
//	import merrors "github.com/scribeworks/mina-cli/pkg/errors"
//
//	// Return a domain error
//	return merrors.ErrUnsupportedMedia
//
//	// Check for domain errors
//	if merrors.IsUnsupportedMedia(err) {
//	    // handle unsupported media case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrUnsupportedMedia indicates a file whose media type is neither
	// video/* nor audio/*.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrMissingRecipients indicates an email action with an empty
	// recipient list.
	ErrMissingRecipients = errors.New("at least one recipient email address is required")

	// ErrSessionInactive indicates an operation against a session that has
	// been discarded or was never established.
	ErrSessionInactive = errors.New("session is not active")

	// ErrEmptyMessage indicates a chat send with empty or whitespace-only
	// text. Callers treat this as a silent no-op rather than a failure.
	ErrEmptyMessage = errors.New("empty message")

	// ErrUploadInProgress indicates a second upload was started while one
	// is already running.
	ErrUploadInProgress = errors.New("upload already in progress")
)

// IsUnsupportedMedia reports whether any error in err's chain is ErrUnsupportedMedia.
func IsUnsupportedMedia(err error) bool {
	return errors.Is(err, ErrUnsupportedMedia)
}

// IsMissingRecipients reports whether any error in err's chain is ErrMissingRecipients.
func IsMissingRecipients(err error) bool {
	return errors.Is(err, ErrMissingRecipients)
}

// IsSessionInactive reports whether any error in err's chain is ErrSessionInactive.
func IsSessionInactive(err error) bool {
	return errors.Is(err, ErrSessionInactive)
}

// IsEmptyMessage reports whether any error in err's chain is ErrEmptyMessage.
func IsEmptyMessage(err error) bool {
	return errors.Is(err, ErrEmptyMessage)
}

// IsUploadInProgress reports whether any error in err's chain is ErrUploadInProgress.
func IsUploadInProgress(err error) bool {
	return errors.Is(err, ErrUploadInProgress)
}

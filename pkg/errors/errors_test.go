package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestSentinelErrors verifies each sentinel matches itself and nothing else.
func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrUnsupportedMedia,
		ErrMissingRecipients,
		ErrSessionInactive,
		ErrEmptyMessage,
		ErrUploadInProgress,
	}

	for i, err := range sentinels {
		for j, other := range sentinels {
			got := errors.Is(err, other)
			want := i == j
			if got != want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", err, other, got, want)
			}
		}
	}
}

// TestIsHelpers verifies the Is* helpers unwrap wrapped errors.
func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		check    func(error) bool
	}{
		{"unsupported media", ErrUnsupportedMedia, IsUnsupportedMedia},
		{"missing recipients", ErrMissingRecipients, IsMissingRecipients},
		{"session inactive", ErrSessionInactive, IsSessionInactive},
		{"empty message", ErrEmptyMessage, IsEmptyMessage},
		{"upload in progress", ErrUploadInProgress, IsUploadInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("submitting file: %w", tt.sentinel)
			if !tt.check(wrapped) {
				t.Errorf("check did not match wrapped sentinel")
			}
			if tt.check(errors.New("unrelated")) {
				t.Errorf("check matched unrelated error")
			}
			if tt.check(nil) {
				t.Errorf("check matched nil")
			}
		})
	}
}

package client

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind is the structured discriminant for request failures. The API client
// classifies every failure exactly once at the transport boundary; callers
// switch on Kind instead of matching human-readable messages.
type Kind int

const (
	// KindRequestFailed is a failure that matched no more specific kind.
	KindRequestFailed Kind = iota

	// KindNetworkUnavailable is a connection-level failure: the backend is
	// unreachable, not listening, or the dial timed out.
	KindNetworkUnavailable

	// KindExtensionInterference is a message-bridge failure signature seen
	// when a local proxy or browser-extension bridge sits between the
	// client and the backend and breaks the connection.
	KindExtensionInterference
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindExtensionInterference:
		return "extension_interference"
	default:
		return "request_failed"
	}
}

// TransportError is returned when the backend answers with an HTTP status
// outside the 2xx range. Body carries the response body text when the
// request path captures it (JSON requests only; multipart uploads record
// the status alone).
type TransportError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// RequestError wraps a network-level failure with its classified kind.
type RequestError struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	switch e.Kind {
	case KindNetworkUnavailable:
		return fmt.Sprintf("network connection failed, check if the server is running: %v", e.Err)
	case KindExtensionInterference:
		return fmt.Sprintf("message bridge interference detected: %v", e.Err)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError is a backend-reported logical rejection: the HTTP exchange
// succeeded but the response envelope carried success=false. It is a
// domain-level failure, not a transport fault.
type APIError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend reported failure", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Message-bridge failure signatures. Substring matching is a documented
// best-effort fallback only; the structured Kind is authoritative.
var extensionSignatures = []string{
	"Could not establish connection",
	"Receiving end does not exist",
}

// Fetch-layer failure signatures, plus the Go dial errors that mean the
// same thing on this side of the wire.
var networkSignatures = []string{
	"Failed to fetch",
	"NetworkError",
	"connection refused",
	"no such host",
	"network is unreachable",
	"i/o timeout",
}

// classify maps a network-level error into a RequestError with its kind.
// HTTP status failures never reach here; they become TransportError in do().
func classify(err error) *RequestError {
	msg := err.Error()

	for _, sig := range extensionSignatures {
		if strings.Contains(msg, sig) {
			return &RequestError{Kind: KindExtensionInterference, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &RequestError{Kind: KindNetworkUnavailable, Err: err}
	}
	for _, sig := range networkSignatures {
		if strings.Contains(msg, sig) {
			return &RequestError{Kind: KindNetworkUnavailable, Err: err}
		}
	}

	return &RequestError{Kind: KindRequestFailed, Err: err}
}

// KindOf returns the classified kind for an error returned by the client.
// Errors that are not RequestErrors report KindRequestFailed.
func KindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindRequestFailed
}

// IsNetworkUnavailable reports whether err was classified as a
// connection-level failure.
func IsNetworkUnavailable(err error) bool {
	return KindOf(err) == KindNetworkUnavailable
}

// IsExtensionInterference reports whether err matched a message-bridge
// failure signature.
func IsExtensionInterference(err error) bool {
	return KindOf(err) == KindExtensionInterference
}

// AsTransportError returns the TransportError in err's chain, if any.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

package carrier

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification. Every failure crossing
// a component boundary carries exactly one of these, so callers branch on
// Kind instead of matching message strings.
type Kind string

const (
	KindValidationError   Kind = "VALIDATION_ERROR"
	KindAuthFailed        Kind = "AUTH_FAILED"
	KindRateLimit         Kind = "RATE_LIMIT"
	KindCarrierAPIError   Kind = "CARRIER_API_ERROR"
	KindNetworkError      Kind = "NETWORK_ERROR"
	KindTimeout           Kind = "TIMEOUT"
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
	KindCarrierNotFound   Kind = "CARRIER_NOT_FOUND"
	KindUnknown           Kind = "UNKNOWN"
)

// Error is the one error type exchanged between components. Lower layers
// either emit it directly or return an unclassified error that the next
// layer up re-expresses as one of these.
type Error struct {
	Kind       Kind
	Carrier    string
	Message    string
	StatusCode int
	Details    map[string]any
	Cause      error
}

// NewError creates a classified error.
func NewError(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Carrier != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Carrier, e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two carrier errors by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCarrier tags the error with the carrier code it came from.
func (e *Error) WithCarrier(code string) *Error {
	e.Carrier = code
	return e
}

// WithStatusCode attaches the transport status code.
func (e *Error) WithStatusCode(status int) *Error {
	e.StatusCode = status
	return e
}

// WithDetails attaches a structured detail map.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithCause preserves the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// KindOf extracts the classification from any error.
// Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether a failed call may succeed on retry.
// Retry policy itself is a caller concern; adapters never retry in place.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindNetworkError, KindTimeout:
		return true
	}
	return false
}

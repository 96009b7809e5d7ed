package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a pipeline failure. The HTTP status is derived from the
// kind only at the handler boundary.
type Kind int

const (
	// KindInvalidInput covers caller-attributable failures: malformed URL,
	// non-HTML content, non-200 fetch, too-short extracted text.
	KindInvalidInput Kind = iota
	// KindTransport covers network-level fetch failures (timeout,
	// connection refused, other transport faults).
	KindTransport
	// KindExtraction covers unexpected faults inside content extraction.
	KindExtraction
	// KindGeneration covers model-side failures (empty output).
	KindGeneration
	// KindInternal covers everything else.
	KindInternal
)

// Error is a classified pipeline error. Message is the user-facing detail
// text; Err optionally keeps the underlying cause for wrapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error keeping the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsClassified reports whether err carries a Kind.
func IsClassified(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// KindOf returns the kind of a classified error, or KindInternal for
// anything else.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code returned to the caller.
// Input and transport failures are the caller's problem; everything else,
// classified or not, is a server error.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindTransport:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package mutation

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a mutation request failed.
type Kind int

const (
	// Invalid marks missing or malformed input, detected before any remote call.
	Invalid Kind = iota + 1
	// NotFound marks an identifier that matches no row.
	NotFound
	// UploadFailed marks a failure of the image host.
	UploadFailed
	// PersistFailed marks a database failure.
	PersistFailed
	// Conflict marks a write refused because other rows depend on the target.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "validation"
	case NotFound:
		return "not-found"
	case UploadFailed:
		return "upload"
	case PersistFailed:
		return "persistence"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a failure scoped to a single request. Msg is safe to show to
// clients; Err is the underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an Error of the given kind with a formatted client message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a client message.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err, or 0 when err is not a mutation error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}

// StatusCode maps err onto an HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UploadFailed:
		return http.StatusBadGateway
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

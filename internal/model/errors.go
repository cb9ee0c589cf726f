package model

import "errors"

var (
	// ErrDuplicateDocument is returned when a document id is already registered.
	ErrDuplicateDocument = errors.New("document id already registered")

	// ErrUnknownDocument is returned when an operation names a document id
	// that is not in the registry.
	ErrUnknownDocument = errors.New("unknown document id")

	// ErrDuplicateMessage is returned when a message id was already appended.
	ErrDuplicateMessage = errors.New("message id already appended")

	// ErrBusy is returned when a mode-processing call is refused because one
	// is already in flight.
	ErrBusy = errors.New("mode processing already in progress")
)

// BackendError describes a failed backend gateway call. Message holds the
// response body (or status text when the body is empty) so it can be shown
// to the user verbatim.
type BackendError struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Op + ": " + e.Message
	}
	if e.Cause != nil {
		return e.Op + ": " + e.Cause.Error()
	}
	return e.Op + " failed"
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every *Error matches exactly one of them with errors.Is.
var (
	ErrTransport    = errors.New("record store unreachable")
	ErrValidation   = errors.New("request rejected as invalid")
	ErrConflict     = errors.New("request conflicts with stored state")
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("operator not authorized")
)

// Error describes one failed Record Store call.
type Error struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 500, status == http.StatusTooManyRequests:
		return ErrTransport
	default:
		return ErrValidation
	}
}

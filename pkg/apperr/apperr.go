// Package apperr is the error taxonomy shared by the HTTP surface. Every
// handler-level failure is converted to one of these kinds before it
// reaches the client.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	Unauthenticated Kind = "unauthenticated"
	InvalidInput    Kind = "invalid_input"
	NotFound        Kind = "not_found"
	Internal        Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a classified error with a client-facing message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error with a message and cause.
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// FromCollaborator wraps a store or verifier failure as Internal. The
// collaborator's message is surfaced verbatim.
func FromCollaborator(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: Internal, Message: cause.Error(), Err: cause}
}

// KindOf returns the kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var coded *Error
	if errors.As(err, &coded) && coded.Kind != "" {
		return coded.Kind
	}
	return Internal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Error()
	}
	return err.Error()
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for every failure.
type Response struct {
	Error string `json:"error"`
}

// Write writes err as a JSON error response with the mapped status.
func Write(w http.ResponseWriter, err error) {
	WriteStatus(w, HTTPStatus(KindOf(err)), MessageOf(err))
}

// WriteStatus writes a JSON error body with an explicit status.
func WriteStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: message})
}

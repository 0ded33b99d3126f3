// Package apperr is the error taxonomy shared by every service and the single
// table that turns it into an HTTP status.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	Unexpected Kind = iota
	Validation
	Conflict
	BadRequest
	InvalidCredentials
	Unauthenticated
	NotFound
)

var kindNames = map[Kind]string{
	Unexpected:         "Unexpected",
	Validation:         "ValidationError",
	Conflict:           "ConflictError",
	BadRequest:         "BadRequest",
	InvalidCredentials: "InvalidCredentials",
	Unauthenticated:    "Unauthenticated",
	NotFound:           "NotFound",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status is the only place a Kind becomes an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Validation, Conflict, BadRequest:
		return http.StatusBadRequest
	case InvalidCredentials, Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldIssue is one per-field validation message.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed business failure. Details is rendered as the envelope's
// "error" member; Cause is kept for logs and development stacks only.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func NewValidation(message string, issues []FieldIssue) *Error {
	return &Error{Kind: Validation, Message: message, Details: issues}
}

// Wrap marks err as an Unexpected failure, attaching a stack when err has none.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Unexpected, Message: message, Cause: errors.WithStack(err)}
}

// As extracts the typed error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the Kind of err; untyped errors are Unexpected.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Unexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

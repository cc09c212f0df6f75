package service

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors. Typed errors in this package wrap one of these so
// callers can classify failures with errors.Is without matching on concrete
// types.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrConflict              = errors.New("conflict")
	ErrRemoteUnavailable     = errors.New("remote system unavailable")
	ErrUnsupportedTransition = errors.New("unsupported transition")
)

// NotFoundError reports that an entity does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a NotFoundError for the given entity kind and id.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err classifies as a not-found failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationError carries one or more field-level messages for input the
// caller can correct and resubmit.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a single-field ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrors creates a ValidationError from multiple field messages.
func NewValidationErrors(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// RequiredError creates a ValidationError for a missing required field.
func RequiredError(field string) error {
	return NewValidationError(field, "is required")
}

// IsValidationError reports whether err classifies as a validation failure.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// ConflictError reports a request that contradicts current state, such as a
// second open scope draft or an out-of-range reorder.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a ConflictError with the given reason.
func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}

// IsConflict reports whether err classifies as a conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// RemoteUnavailableError reports that the adapter could not serve a call:
// a transport failure, a timeout, or a 5xx response. Write paths treat it as
// the trigger for shadow-store fallback; read paths propagate it.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: adapter unavailable", e.Op)
	}
	return fmt.Sprintf("%s: adapter unavailable: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return ErrRemoteUnavailable }

// NewRemoteUnavailableError creates a RemoteUnavailableError for the given
// operation and underlying cause.
func NewRemoteUnavailableError(op string, err error) error {
	return &RemoteUnavailableError{Op: op, Err: err}
}

// IsRemoteUnavailable reports whether err classifies as adapter unavailability.
func IsRemoteUnavailable(err error) bool { return errors.Is(err, ErrRemoteUnavailable) }

// UnsupportedTransitionError reports a workflow operation requested against a
// state that has no handler for it. It indicates a sequencing bug in the
// caller rather than bad user input.
type UnsupportedTransitionError struct {
	Op    string
	State string
}

func (e *UnsupportedTransitionError) Error() string {
	return fmt.Sprintf("%s: no transition from state %q", e.Op, e.State)
}

func (e *UnsupportedTransitionError) Unwrap() error { return ErrUnsupportedTransition }

// NewUnsupportedTransitionError creates an UnsupportedTransitionError.
func NewUnsupportedTransitionError(op, state string) error {
	return &UnsupportedTransitionError{Op: op, State: state}
}

// IsUnsupportedTransition reports whether err classifies as an unsupported
// workflow transition.
func IsUnsupportedTransition(err error) bool { return errors.Is(err, ErrUnsupportedTransition) }

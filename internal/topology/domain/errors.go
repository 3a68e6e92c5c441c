package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error carries one of the sentinel kinds above plus caller-facing context.
// errors.Is(err, ErrNotFound) matches on Kind.
type Error struct {
	Kind    error
	Message string
	// Field names the offending input field or endpoint ("source", "target", "id").
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidArgument(field, msg string) error {
	return &Error{Kind: ErrInvalidArgument, Field: field, Message: msg}
}

func NotFound(field, msg string) error {
	return &Error{Kind: ErrNotFound, Field: field, Message: msg}
}

func DuplicateID(id string) error {
	return &Error{Kind: ErrDuplicateID, Field: "id", Message: fmt.Sprintf("id %q already exists", id)}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// StoreUnavailable wraps an underlying I/O failure.
func StoreUnavailable(op string, err error) error {
	return &Error{Kind: ErrStoreUnavailable, Message: op, Err: err}
}

// FieldOf returns the Field of a domain error, or "" for other errors.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}

package errors

import (
	stderrors "errors"
)

type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypePrecondition ErrorType = "PRECONDITION_FAILED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// Error is the user-facing failure of a repository operation. Message is
// printed verbatim by the command layer.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

func PreconditionFailed(message string) *Error {
	return &Error{
		Type:    ErrorTypePrecondition,
		Message: message,
	}
}

// KindOf reports the ErrorType carried anywhere in err's chain, or
// ErrorTypeInternal when err is not one of ours.
func KindOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == ErrorTypeNotFound
}

func IsPrecondition(err error) bool {
	return err != nil && KindOf(err) == ErrorTypePrecondition
}

// Message returns the user-facing message of err, unwrapping to the typed
// error when there is one.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

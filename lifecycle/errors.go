package lifecycle

import (
	"errors"
	"fmt"
)

// Code classifies a lifecycle failure. Controllers map codes to HTTP statuses;
// business-rule failures are kept distinct from upstream provider failures.
type Code string

const (
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeOutOfScope         Code = "OUT_OF_SCOPE"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeUpstreamError      Code = "UPSTREAM_ERROR"
)

// Error is a categorical lifecycle error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an Error with a formatted message.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the lifecycle code from an error, or UPSTREAM_ERROR for
// anything that did not originate in the lifecycle model.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeUpstreamError
}

package booru

import (
	"errors"
	"fmt"
)

// Error codes for post fetching.
const (
	ErrCodeNoPosts       = "NO_POSTS"
	ErrCodeRequestFailed = "REQUEST_FAILED"
	ErrCodeBadResponse   = "BAD_RESPONSE"
	ErrCodeNoAuth        = "NO_AUTH"
)

// Error represents a fetch error with a code.
type Error struct {
	Code    string
	Message string
	Status  int    // HTTP status for REQUEST_FAILED
	Body    string // leading part of the response body, if any
	URL     string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the fetch error code carried by err, or "".
func Code(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

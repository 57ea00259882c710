package player

import (
	"errors"
	"fmt"
)

// Error codes for playback.
const (
	ErrCodeSourceFailed   = "SOURCE_FAILED"
	ErrCodeNoFrames       = "NO_FRAMES"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeTerminalFailed = "TERMINAL_FAILED"
)

// Error represents a playback error with a code.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the playback error code carried by err, or "".
func Code(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
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

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/booruterm/booruterm/internal/booru"
	"github.com/booruterm/booruterm/internal/logging"
	"github.com/booruterm/booruterm/internal/player"
)

// Error classes shown to the user.
const (
	classNoSource = "No source found"
	classNetwork  = "Network/process failure"
	classRender   = "Render failure"
	classConfig   = "Configuration error"
)

// userError attaches a user-facing class to err.
type userError struct {
	class string
	err   error
}

func (e *userError) Error() string { return e.class + ": " + e.err.Error() }
func (e *userError) Unwrap() error { return e.err }

func classify(class string, err error) error {
	if err == nil {
		return nil
	}
	var ue *userError
	if errors.As(err, &ue) {
		return err
	}
	return &userError{class: class, err: err}
}

// errorClass picks the class for err, preferring codes carried by domain
// errors over the class assigned at the call site.
func errorClass(err error) string {
	switch booru.Code(err) {
	case booru.ErrCodeNoPosts:
		return classNoSource
	case booru.ErrCodeNoAuth:
		return classConfig
	case booru.ErrCodeRequestFailed, booru.ErrCodeBadResponse:
		return classNetwork
	}
	switch player.Code(err) {
	case player.ErrCodeNoFrames:
		return classNoSource
	case player.ErrCodeSourceFailed:
		return classNetwork
	case player.ErrCodeRenderFailed, player.ErrCodeTerminalFailed:
		return classRender
	}
	var ue *userError
	if errors.As(err, &ue) {
		return ue.class
	}
	return "Error"
}

// reportError prints err with its class, any response detail, and the most
// recent warnings so the triggering condition is identifiable.
func reportError(w io.Writer, err error) {
	inner := err
	var ue *userError
	if errors.As(err, &ue) {
		inner = ue.err
	}
	fmt.Fprintf(w, "%s: %v\n", errorClass(err), inner)

	var be *booru.Error
	if errors.As(err, &be) {
		if be.URL != "" {
			fmt.Fprintf(w, "  url: %s\n", be.URL)
		}
		if be.Body != "" {
			fmt.Fprintf(w, "  response: %s\n", be.Body)
		}
	}

	recent := logging.Recent(5, slog.LevelWarn)
	if len(recent) == 0 {
		return
	}
	fmt.Fprintln(w, "Recent log entries:")
	for _, e := range recent {
		fmt.Fprintf(w, "  %s\n", logging.FormatLogLine(e))
	}
}

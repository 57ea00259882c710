package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/booruterm/booruterm/internal/logging"
)

// ErrGuardActive is returned by Enter while another Guard holds the terminal.
var ErrGuardActive = errors.New("terminal: cancellation monitor already active")

// active is process-wide: terminal mode is a singleton.
var active atomic.Bool

// modeController switches a descriptor into cbreak mode and returns the
// function that puts the captured prior mode back.
type modeController interface {
	IsTerminal(fd int) bool
	Cbreak(fd int) (restore func() error, err error)
}

type sysMode struct{}

func (sysMode) IsTerminal(fd int) bool { return IsTerminal(fd) }

func (sysMode) Cbreak(fd int) (func() error, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}
	if err := setCbreak(fd); err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}

// Guard is an entered cancellation monitor. Check is cheap and never blocks;
// Exit restores the input mode exactly once.
type Guard struct {
	fd          int
	interactive bool
	restore     func() error
	logger      logging.Logger

	exitOnce sync.Once
	exited   atomic.Bool
	buf      [1]byte
}

// Enter captures the current input mode of in and switches it to cbreak mode
// so keystrokes arrive one at a time without echo. When in is not a terminal
// the returned Guard is inert and Check always reports false.
func Enter(in *os.File, logger logging.Logger) (*Guard, error) {
	return enter(in, sysMode{}, logger)
}

func enter(in *os.File, mode modeController, logger logging.Logger) (*Guard, error) {
	if logger == nil {
		logger = logging.GetLogger("terminal")
	}
	if !active.CompareAndSwap(false, true) {
		return nil, ErrGuardActive
	}

	g := &Guard{fd: -1, logger: logger}
	if in == nil {
		logger.Debug("No input channel, key cancellation disabled")
		return g, nil
	}
	g.fd = int(in.Fd())
	if !mode.IsTerminal(g.fd) {
		logger.Debug("Input is not a terminal, key cancellation disabled", "fd", g.fd)
		return g, nil
	}

	restore, err := mode.Cbreak(g.fd)
	if err != nil {
		active.Store(false)
		return nil, fmt.Errorf("enter cbreak mode: %w", err)
	}
	g.restore = restore
	g.interactive = true
	logger.Debug("Entered cbreak mode", "fd", g.fd)
	return g, nil
}

// Check reports whether Enter was pressed. At most one pending character is
// consumed per call; anything other than a line terminator is discarded.
func (g *Guard) Check() bool {
	if g == nil || !g.interactive || g.exited.Load() {
		return false
	}

	fds := []unix.PollFd{{Fd: int32(g.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return false
	}

	n, err = unix.Read(g.fd, g.buf[:])
	if err != nil || n <= 0 {
		return false
	}
	return g.buf[0] == '\n' || g.buf[0] == '\r'
}

// Exit restores the input mode captured by Enter and releases the monitor.
// It is safe to call more than once.
func (g *Guard) Exit() {
	if g == nil {
		return
	}
	g.exitOnce.Do(func() {
		g.exited.Store(true)
		if g.restore != nil {
			if err := g.restore(); err != nil {
				g.logger.Warn("Failed to restore terminal mode", "fd", g.fd, "error", err)
			} else {
				g.logger.Debug("Restored terminal mode", "fd", g.fd)
			}
		}
		active.Store(false)
	})
}

package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/booruterm/booruterm/internal/logging"
)

// LogParser parses a log line and returns the log level and message.
// Used to extract structured log info from process output (ffmpeg, etc.)
type LogParser func(line string) (level, msg string)

// Process owns one child process and the read end of its stdout pipe.
type Process struct {
	id              string
	args            []string
	cmd             *exec.Cmd
	logger          logging.Logger
	processLogger   logging.Logger // logger for stderr lines (nil = use logger)
	logParser       LogParser      // parses stderr for log level (nil = no parsing)
	stdout          *os.File
	done            chan struct{} // closed once Wait returns
	waitErr         error
	stderrDone      chan struct{}
	stopOnce        sync.Once
	exitCode        int
	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up
}

// NewProcess creates a process for args (args[0] is the executable).
func NewProcess(id string, args []string, logger logging.Logger) *Process {
	return &Process{
		id:              id,
		args:            args,
		logger:          logger,
		gracefulTimeout: 200 * time.Millisecond,
		killTimeout:     time.Second,
	}
}

// SetLogParser sets a custom logger and log parser for stderr output.
// The logger is used for process output (e.g., module="ffmpeg").
// The parser extracts log level from process-specific output formats.
func (p *Process) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// SetTimeouts overrides the graceful and kill timeouts used by Stop.
// Zero values keep the current setting.
func (p *Process) SetTimeouts(graceful, kill time.Duration) {
	if graceful > 0 {
		p.gracefulTimeout = graceful
	}
	if kill > 0 {
		p.killTimeout = kill
	}
}

// Start spawns the process with stdout connected to a fresh pipe and stderr
// streamed to the logger. Stdin is /dev/null so the child never competes
// with the terminal for keypresses.
func (p *Process) Start() error {
	if len(p.args) == 0 {
		p.logger.Error("Empty command")
		return fmt.Errorf("empty command")
	}
	if p.cmd != nil {
		return fmt.Errorf("process %s already started", p.id)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		p.logger.Error("Failed to create stdout pipe", "error", err)
		return err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		p.logger.Error("Failed to create stderr pipe", "error", err)
		return err
	}

	p.cmd = exec.Command(p.args[0], p.args[1:]...)
	p.cmd.Stdout = stdoutW
	p.cmd.Stderr = stderrW
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := p.cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		p.logger.Error("Failed to start process", "error", err, "command", p.args[0])
		return err
	}

	// The child holds its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()

	p.stdout = stdoutR
	p.done = make(chan struct{})
	p.stderrDone = make(chan struct{})
	p.logger.Info("Process started", "id", p.id, "pid", p.Pid())

	go func() {
		p.streamOutput(stderrR, "stderr")
		stderrR.Close()
		close(p.stderrDone)
	}()

	go func() {
		p.waitErr = p.cmd.Wait()
		close(p.done)
	}()

	return nil
}

// Output returns the read end of the child's stdout, or nil before Start.
func (p *Process) Output() *os.File {
	return p.stdout
}

// Pid returns the child's process id, or 0 before Start.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Exited reports whether the child has terminated. It never blocks.
func (p *Process) Exited() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Stop terminates the child, closes its stdout pipe and waits for it to exit.
// SIGINT goes to the whole process group first; after the graceful timeout
// the group is killed. Stop returns the exit code and is safe to call more
// than once.
func (p *Process) Stop() int {
	p.stopOnce.Do(func() {
		if p.cmd == nil || p.done == nil {
			p.exitCode = 0
			return
		}
		if !p.Exited() {
			p.sendSignal(unix.SIGINT)
		}
		// A writer blocked on a full pipe sees EPIPE once the read end is gone.
		if err := p.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			p.logger.Warn("Failed to close stdout pipe", "error", err)
		}

		p.exitCode = p.waitForExit(p.gracefulTimeout)

		select {
		case <-p.stderrDone:
		case <-time.After(p.killTimeout):
			p.logger.Warn("Stderr still open after exit", "id", p.id)
		}
		p.logger.Debug("Process stopped", "id", p.id, "pid", p.Pid(), "exit_code", p.exitCode)
	})
	return p.exitCode
}

// sendSignal signals the child's process group, falling back to the child.
func (p *Process) sendSignal(sig unix.Signal) {
	if err := unix.Kill(-p.Pid(), sig); err != nil {
		if sigErr := p.cmd.Process.Signal(sig); sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			p.logger.Warn("Failed to signal process", "signal", sig.String(), "error", sigErr)
		}
	}
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// waitForExit waits for the process to exit with a timeout, force-killing if needed.
func (p *Process) waitForExit(timeout time.Duration) int {
	select {
	case <-p.done:
		return exitCodeFromError(p.waitErr)
	case <-time.After(timeout):
		p.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", timeout)
		p.sendSignal(unix.SIGKILL)
		// Wait for process to exit with a secondary timeout to prevent hanging
		select {
		case <-p.done:
		case <-time.After(p.killTimeout):
			p.logger.Error("Process did not exit after kill signal")
		}
		return 137
	}
}

// streamOutput logs each line the child writes to source.
func (p *Process) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)

	// Use process logger if configured, otherwise fall back to default logger
	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Use configured parser or default to info level
		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		switch level {
		case "fatal", "error", "panic":
			logger.Error(msg, "source", source)
		case "warning":
			logger.Warn(msg, "source", source)
		case "debug", "trace", "verbose":
			logger.Debug(msg, "source", source)
		default:
			logger.Info(msg, "source", source)
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading output", "source", source, "error", err)
	}
}

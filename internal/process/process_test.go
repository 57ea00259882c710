package process

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProcess creates a Process running sh -c script with short timeouts.
func newTestProcess(script string) *Process {
	p := NewProcess("test", []string{"sh", "-c", script}, testLogger())
	p.gracefulTimeout = 100 * time.Millisecond
	p.killTimeout = 500 * time.Millisecond
	return p
}

// waitExited polls Exited until it reports true, failing the test on timeout.
func waitExited(t *testing.T, p *Process, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !p.Exited() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for process to exit")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// stopAsync runs Stop in a goroutine and returns the exit code channel.
func stopAsync(p *Process) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- p.Stop()
	}()
	return done
}

func waitForCode(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case code := <-done:
		return code
	case <-time.After(timeout):
		t.Fatal("timeout waiting for Stop to return")
		return -1
	}
}

func TestOutputPipe(t *testing.T) {
	p := newTestProcess("printf hello")
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop()

	got, err := io.ReadAll(p.Output())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("output = %q, want %q", got, "hello")
	}
}

func TestGracefulStop(t *testing.T) {
	// Process that handles SIGINT
	p := newTestProcess(`trap 'exit 0' INT TERM; while :; do sleep 0.1; done`)
	p.gracefulTimeout = 500 * time.Millisecond

	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if exitCode := waitForCode(t, stopAsync(p), 2*time.Second); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !p.Exited() {
		t.Error("process still running after Stop")
	}
}

func TestForceKillOnTimeout(t *testing.T) {
	// Process group that ignores SIGINT
	p := newTestProcess(`trap '' INT; sleep 10`)
	p.gracefulTimeout = 50 * time.Millisecond

	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	// Process was killed, expect 137 (128 + 9 for SIGKILL)
	if exitCode := waitForCode(t, stopAsync(p), 2*time.Second); exitCode != 137 {
		t.Errorf("expected exit code 137, got %d", exitCode)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stop took too long: %v", elapsed)
	}
}

func TestStopAfterExit(t *testing.T) {
	p := newTestProcess("exit 3")
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitExited(t, p, time.Second)

	if p.Pid() == 0 {
		t.Error("Pid() = 0 after Start")
	}
	if code := p.Stop(); code != 3 {
		t.Errorf("Stop() = %d, want 3", code)
	}
	// Second Stop must not panic and must report the same code.
	if code := p.Stop(); code != 3 {
		t.Errorf("second Stop() = %d, want 3", code)
	}
}

func TestStopClosesOutput(t *testing.T) {
	p := newTestProcess("sleep 10")
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForCode(t, stopAsync(p), 2*time.Second)

	buf := make([]byte, 1)
	if _, err := p.Output().Read(buf); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Read() after Stop error = %v, want os.ErrClosed", err)
	}
}

func TestStopBeforeStart(t *testing.T) {
	p := newTestProcess("true")
	if code := p.Stop(); code != 0 {
		t.Errorf("Stop() = %d, want 0", code)
	}
	if p.Exited() {
		t.Error("Exited() = true for a process that never started")
	}
	if p.Pid() != 0 {
		t.Errorf("Pid() = %d before Start", p.Pid())
	}
}

func TestStartErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty command", nil},
		{"missing binary", []string{"/nonexistent/booruterm-test-binary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcess("test", tt.args, testLogger())
			if err := p.Start(); err == nil {
				p.Stop()
				t.Fatal("Start() expected error, got nil")
			}
			if p.Output() != nil {
				t.Error("Output() should be nil after failed start")
			}
		})
	}
}

func TestStartTwice(t *testing.T) {
	p := newTestProcess("sleep 1")
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop()

	if err := p.Start(); err == nil {
		t.Error("second Start() expected error, got nil")
	}
}

// syncBuffer is a bytes.Buffer safe for the stderr goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogParserRoutesStderr(t *testing.T) {
	var out syncBuffer
	stderrLogger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := newTestProcess(`echo "[error] broken input" 1>&2; echo "[warning] odd frame" 1>&2`)
	p.SetLogParser(stderrLogger, func(line string) (string, string) {
		if strings.HasPrefix(line, "[") {
			end := strings.Index(line, "] ")
			return line[1:end], line[end+2:]
		}
		return "info", line
	})

	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitExited(t, p, time.Second)
	p.Stop()

	logs := out.String()
	if !strings.Contains(logs, `level=ERROR msg="broken input"`) {
		t.Errorf("missing error line in logs:\n%s", logs)
	}
	if !strings.Contains(logs, `level=WARN msg="odd frame"`) {
		t.Errorf("missing warning line in logs:\n%s", logs)
	}
}

func TestExitCodeFromError(t *testing.T) {
	exitErr := exec.Command("sh", "-c", "exit 7").Run()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit error", exitErr, 7},
		{"other error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFromError(tt.err); got != tt.want {
				t.Errorf("exitCodeFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

package terminal

import (
	"errors"
	"os"
	"testing"

	"github.com/booruterm/booruterm/internal/logging"
)

// fakeMode records enter/exit pairs instead of touching a real terminal.
type fakeMode struct {
	terminal   bool
	cbreakErr  error
	restoreErr error
	enters     int
	exits      int
}

func (f *fakeMode) IsTerminal(int) bool { return f.terminal }

func (f *fakeMode) Cbreak(int) (func() error, error) {
	if f.cbreakErr != nil {
		return nil, f.cbreakErr
	}
	f.enters++
	return func() error {
		f.exits++
		return f.restoreErr
	}, nil
}

func newInput(t *testing.T) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe() error = %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func enterFake(t *testing.T, in *os.File, mode *fakeMode) *Guard {
	t.Helper()
	g, err := enter(in, mode, logging.GetLogger("terminal"))
	if err != nil {
		t.Fatalf("enter() error = %v", err)
	}
	t.Cleanup(g.Exit)
	return g
}

func TestCheckConsumesOneCharacter(t *testing.T) {
	r, w := newInput(t)
	mode := &fakeMode{terminal: true}
	g := enterFake(t, r, mode)

	if g.Check() {
		t.Fatal("Check() = true with no pending input")
	}

	if _, err := w.Write([]byte("q \r")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	script := []bool{false, false, true, false}
	for i, want := range script {
		if got := g.Check(); got != want {
			t.Errorf("Check() #%d = %v, want %v", i, got, want)
		}
	}
}

func TestCheckLineFeed(t *testing.T) {
	r, w := newInput(t)
	g := enterFake(t, r, &fakeMode{terminal: true})

	w.Write([]byte("\n"))
	if !g.Check() {
		t.Error("Check() = false after newline")
	}
}

func TestExitRestoresOnce(t *testing.T) {
	r, _ := newInput(t)
	mode := &fakeMode{terminal: true}
	g, err := enter(r, mode, nil)
	if err != nil {
		t.Fatalf("enter() error = %v", err)
	}

	g.Exit()
	g.Exit()

	if mode.enters != 1 || mode.exits != 1 {
		t.Errorf("enters=%d exits=%d, want exactly one pair", mode.enters, mode.exits)
	}
	if g.Check() {
		t.Error("Check() after Exit should be false")
	}
}

func TestRestoreFailureIsNotFatal(t *testing.T) {
	r, _ := newInput(t)
	mode := &fakeMode{terminal: true, restoreErr: errors.New("EIO")}
	g, err := enter(r, mode, nil)
	if err != nil {
		t.Fatalf("enter() error = %v", err)
	}
	g.Exit()

	// The monitor is released even though restore failed.
	g2, err := enter(r, &fakeMode{terminal: true}, nil)
	if err != nil {
		t.Fatalf("enter() after failed restore error = %v", err)
	}
	g2.Exit()
}

func TestNestedEnterRejected(t *testing.T) {
	r, _ := newInput(t)
	mode := &fakeMode{terminal: true}
	enterFake(t, r, mode)

	if _, err := enter(r, mode, nil); !errors.Is(err, ErrGuardActive) {
		t.Fatalf("nested enter() error = %v, want ErrGuardActive", err)
	}
	if mode.enters != 1 {
		t.Errorf("enters = %d, nested enter must not touch the mode", mode.enters)
	}
}

func TestNonTerminalInputIsInert(t *testing.T) {
	r, w := newInput(t)
	mode := &fakeMode{terminal: false}
	g := enterFake(t, r, mode)

	w.Write([]byte("\n"))
	if g.Check() {
		t.Error("Check() = true for non-terminal input")
	}
	if mode.enters != 0 {
		t.Errorf("enters = %d, want 0 for non-terminal input", mode.enters)
	}
}

func TestNilInputIsInert(t *testing.T) {
	g := enterFake(t, nil, &fakeMode{terminal: true})
	if g.Check() {
		t.Error("Check() = true without input")
	}
}

func TestCbreakFailureReleasesMonitor(t *testing.T) {
	r, _ := newInput(t)
	if _, err := enter(r, &fakeMode{terminal: true, cbreakErr: errors.New("ENOTTY")}, nil); err == nil {
		t.Fatal("enter() expected error")
	}

	g, err := enter(r, &fakeMode{terminal: true}, nil)
	if err != nil {
		t.Fatalf("enter() after failure error = %v", err)
	}
	g.Exit()
}

func TestEnterRealPipeIsInert(t *testing.T) {
	r, w := newInput(t)
	g, err := Enter(r, nil)
	if err != nil {
		t.Fatalf("Enter() error = %v", err)
	}
	defer g.Exit()

	w.Write([]byte("\r"))
	if g.Check() {
		t.Error("Check() = true for a pipe")
	}
}

func TestSizeNotATerminal(t *testing.T) {
	r, _ := newInput(t)
	if _, _, err := Size(r); err == nil {
		t.Error("Size() on a pipe expected error")
	}
	if _, _, ok := CellSize(r); ok {
		t.Error("CellSize() on a pipe should report ok=false")
	}
	if IsTerminal(int(r.Fd())) {
		t.Error("IsTerminal() = true for a pipe")
	}
}

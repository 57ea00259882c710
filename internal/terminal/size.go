package terminal

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	return isatty.IsTerminal(uintptr(fd)) || isatty.IsCygwinTerminal(uintptr(fd))
}

// Size returns the character dimensions of the terminal behind f.
func Size(f *os.File) (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("get terminal size: %w", err)
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("get terminal size: invalid %dx%d", cols, rows)
	}
	return cols, rows, nil
}

// CellSize returns the pixel size of one character cell. Terminals that do
// not report pixel dimensions yield ok=false.
func CellSize(f *os.File) (width, height int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return 0, 0, false
	}
	return int(ws.Xpixel) / int(ws.Col), int(ws.Ypixel) / int(ws.Row), true
}

package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/charmbracelet/x/ansi"
	_ "golang.org/x/image/webp"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// Area is a size in terminal character cells.
type Area struct {
	Cols int
	Rows int
}

// Valid reports whether both dimensions are positive.
func (a Area) Valid() bool {
	return a.Cols > 0 && a.Rows > 0
}

func (a Area) String() string {
	return fmt.Sprintf("%dx%d", a.Cols, a.Rows)
}

// Renderer draws one encoded image within area and returns the area it
// actually covered, which may be smaller to keep the aspect ratio.
type Renderer interface {
	Render(frame []byte, area Area) (Area, error)
}

// Decode decodes a png, jpeg, gif or webp image. For animated gifs only the
// first frame is returned.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("decode image: empty %s", format)
	}
	return img, format, nil
}

// FitCells returns the largest area inside limit that keeps the aspect ratio
// of a width x height image drawn with cells twice as tall as they are wide.
func FitCells(width, height int, limit Area) Area {
	if width <= 0 || height <= 0 || !limit.Valid() {
		return Area{}
	}

	cols := limit.Cols
	rows := roundDiv(cols*height, width*cellAspect)
	if rows > limit.Rows {
		rows = limit.Rows
		cols = min(limit.Cols, roundDiv(rows*cellAspect*width, height))
	}
	return Area{Cols: max(cols, 1), Rows: max(rows, 1)}
}

func roundDiv(a, b int) int {
	return (a + b/2) / b
}

// ClearScreen erases the screen and homes the cursor.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, ansi.EraseEntireScreen+ansi.CursorHomePosition)
	return err
}

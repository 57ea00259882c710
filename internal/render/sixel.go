package render

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"github.com/mattn/go-sixel"
	"golang.org/x/image/draw"
)

// Fallback cell size in pixels when the terminal does not report one.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

// Sixel renders images as sixel graphics scaled to the cell grid.
type Sixel struct {
	out        io.Writer
	cellWidth  int
	cellHeight int
}

// NewSixel returns a sixel renderer. Non-positive cell sizes fall back to
// DefaultCellWidth x DefaultCellHeight.
func NewSixel(out io.Writer, cellWidth, cellHeight int) *Sixel {
	if cellWidth <= 0 || cellHeight <= 0 {
		cellWidth, cellHeight = DefaultCellWidth, DefaultCellHeight
	}
	return &Sixel{out: out, cellWidth: cellWidth, cellHeight: cellHeight}
}

// Render implements Renderer.
func (s *Sixel) Render(frame []byte, area Area) (Area, error) {
	img, _, err := Decode(frame)
	if err != nil {
		return Area{}, err
	}
	if !area.Valid() {
		return Area{}, errInvalidArea(area)
	}

	scaled := s.scale(img, area)
	sb := scaled.Bounds()

	w := bufio.NewWriter(s.out)
	if err := sixel.NewEncoder(w).Encode(scaled); err != nil {
		return Area{}, fmt.Errorf("encode sixel: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return Area{}, err
	}
	if err := w.Flush(); err != nil {
		return Area{}, err
	}

	return Area{
		Cols: ceilDiv(sb.Dx(), s.cellWidth),
		Rows: ceilDiv(sb.Dy(), s.cellHeight),
	}, nil
}

// scale fits img into the pixel box covered by area.
func (s *Sixel) scale(img image.Image, area Area) image.Image {
	b := img.Bounds()
	boxW, boxH := area.Cols*s.cellWidth, area.Rows*s.cellHeight

	w, h := boxW, b.Dy()*boxW/b.Dx()
	if h > boxH {
		w, h = b.Dx()*boxH/b.Dy(), boxH
	}
	w, h = max(w, 1), max(h, 1)
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func errInvalidArea(area Area) error {
	return fmt.Errorf("render area %s is empty", area)
}

package render

import (
	"io"

	"github.com/qeesung/image2ascii/convert"
)

// ASCII renders images as characters, optionally with 24-bit color.
type ASCII struct {
	out     io.Writer
	colored bool
	conv    *convert.ImageConverter
}

// NewASCII returns an ASCII renderer writing to out.
func NewASCII(out io.Writer, colored bool) *ASCII {
	return &ASCII{
		out:     out,
		colored: colored,
		conv:    convert.NewImageConverter(),
	}
}

// Render implements Renderer.
func (a *ASCII) Render(frame []byte, area Area) (Area, error) {
	img, _, err := Decode(frame)
	if err != nil {
		return Area{}, err
	}

	b := img.Bounds()
	used := FitCells(b.Dx(), b.Dy(), area)
	if !used.Valid() {
		return Area{}, errInvalidArea(area)
	}

	opts := convert.DefaultOptions
	opts.FitScreen = false
	opts.FixedWidth = used.Cols
	opts.FixedHeight = used.Rows
	opts.Colored = a.colored

	if _, err := io.WriteString(a.out, a.conv.Image2ASCIIString(img, &opts)); err != nil {
		return Area{}, err
	}
	return used, nil
}

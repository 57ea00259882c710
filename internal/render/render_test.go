package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestFitCells(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		limit         Area
		want          Area
	}{
		{"wide fits width", 100, 50, Area{80, 24}, Area{80, 20}},
		{"square bound by rows", 100, 100, Area{80, 24}, Area{48, 24}},
		{"tall", 10, 100, Area{80, 24}, Area{5, 24}},
		{"tiny limit", 1000, 10, Area{4, 4}, Area{4, 1}},
		{"empty image", 0, 10, Area{80, 24}, Area{}},
		{"empty limit", 10, 10, Area{0, 24}, Area{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitCells(tt.width, tt.height, tt.limit)
			if got != tt.want {
				t.Errorf("FitCells(%d, %d, %v) = %v, want %v", tt.width, tt.height, tt.limit, got, tt.want)
			}
			if got.Cols > tt.limit.Cols || got.Rows > tt.limit.Rows {
				t.Errorf("FitCells() = %v exceeds limit %v", got, tt.limit)
			}
		})
	}
}

func TestDecodeFormats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		format  string
		wantErr bool
	}{
		{"png", encodePNG(t, 4, 4), "png", false},
		{"jpeg", jpg.Bytes(), "jpeg", false},
		{"garbage", []byte("<html>not an image</html>"), "", true},
		{"truncated png", encodePNG(t, 4, 4)[:20], "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, format, err := Decode(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if format != tt.format {
				t.Errorf("Decode() format = %q, want %q", format, tt.format)
			}
		})
	}
}

func TestASCIIRender(t *testing.T) {
	var out bytes.Buffer
	r := NewASCII(&out, false)

	used, err := r.Render(encodePNG(t, 100, 50), Area{Cols: 40, Rows: 30})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := (Area{Cols: 40, Rows: 10}); used != want {
		t.Fatalf("Render() area = %v, want %v", used, want)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != used.Rows {
		t.Fatalf("rendered %d lines, want %d", len(lines), used.Rows)
	}
	for i, line := range lines {
		if len(line) != used.Cols {
			t.Errorf("line %d has %d chars, want %d", i, len(line), used.Cols)
		}
	}
}

func TestASCIIRenderBadFrame(t *testing.T) {
	var out bytes.Buffer
	if _, err := NewASCII(&out, true).Render([]byte("IEND"), Area{10, 10}); err == nil {
		t.Fatal("Render() expected error for undecodable frame")
	}
	if out.Len() != 0 {
		t.Errorf("Render() wrote %d bytes for a bad frame", out.Len())
	}
}

func TestSixelRender(t *testing.T) {
	var out bytes.Buffer
	r := NewSixel(&out, 0, 0)

	used, err := r.Render(encodePNG(t, 100, 50), Area{Cols: 10, Rows: 10})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// 100x50 px fits the 100x200 px box unscaled: 10 cols, ceil(50/20) rows.
	if want := (Area{Cols: 10, Rows: 3}); used != want {
		t.Errorf("Render() area = %v, want %v", used, want)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("\x1bP")) {
		t.Errorf("output does not start with a DCS sequence: %q", out.Bytes()[:min(8, out.Len())])
	}
}

func TestSixelScaleDown(t *testing.T) {
	var out bytes.Buffer
	r := NewSixel(&out, 8, 16)

	used, err := r.Render(encodePNG(t, 400, 400), Area{Cols: 10, Rows: 4})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// Box is 80x64 px; a square image scales to 64x64.
	if want := (Area{Cols: 8, Rows: 4}); used != want {
		t.Errorf("Render() area = %v, want %v", used, want)
	}
}

func TestClearScreen(t *testing.T) {
	var out bytes.Buffer
	if err := ClearScreen(&out); err != nil {
		t.Fatalf("ClearScreen() error = %v", err)
	}
	if got := out.String(); got != "\x1b[2J\x1b[H" {
		t.Errorf("ClearScreen() wrote %q", got)
	}
}

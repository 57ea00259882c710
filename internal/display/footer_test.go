package display

import (
	"bytes"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/booruterm/booruterm/internal/booru"
)

func TestEllipsize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "cat dog", 10, "cat dog"},
		{"exact", "cat dog", 7, "cat dog"},
		{"cut", "cat dog bird", 10, "cat dog..."},
		{"wide runes", "猫猫猫猫猫", 7, "猫猫..."},
		{"tiny", "abcdef", 2, "ab"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ellipsize(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Ellipsize(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if w := runewidth.StringWidth(got); w > tt.max {
				t.Errorf("result width %d exceeds %d", w, tt.max)
			}
		})
	}
}

func TestFooterWrite(t *testing.T) {
	var buf bytes.Buffer
	post := &booru.Post{
		PageURL: "https://rule34.xxx/index.php?page=post&s=view&id=7",
		Author:  "alice",
		Tags:    "one two three four five",
		Score:   12,
	}

	if err := NewFooter(&buf).Write(post, 7); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "https://rule34.xxx/index.php?page=post&s=view&id=7\n" +
		"alice\n" +
		"one two...\n" +
		"score: 12\n"
	if got := buf.String(); got != want {
		t.Errorf("Write() =\n%q\nwant\n%q", got, want)
	}
}

// Package display prints post metadata under a rendered image.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/booruterm/booruterm/internal/booru"
)

const ellipsis = "..."

// Footer writes the page URL, author, tags and score of post. Tags are
// shortened to fit width plus the length of the ellipsis.
type Footer struct {
	out    io.Writer
	url    lipgloss.Style
	author lipgloss.Style
	tags   lipgloss.Style
	score  lipgloss.Style
}

// NewFooter creates a footer writer. Styling degrades to plain text when out
// is not a color terminal.
func NewFooter(out io.Writer) *Footer {
	r := lipgloss.NewRenderer(out)
	return &Footer{
		out:    out,
		url:    r.NewStyle().Underline(true).Foreground(lipgloss.Color("12")),
		author: r.NewStyle().Bold(true),
		tags:   r.NewStyle().Faint(true),
		score:  r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Write prints the footer for post below an image width cells wide.
func (f *Footer) Write(post *booru.Post, width int) error {
	lines := []string{
		f.url.Render(post.PageURL),
		f.author.Render(post.Author),
		f.tags.Render(Ellipsize(post.Tags, width+len(ellipsis))),
		f.score.Render(fmt.Sprintf("score: %d", post.Score)),
	}
	_, err := io.WriteString(f.out, strings.Join(lines, "\n")+"\n")
	return err
}

// Ellipsize shortens s to at most maxWidth display cells, ending it with an
// ellipsis when anything was cut.
func Ellipsize(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

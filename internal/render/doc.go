// Package render draws a single still image into the terminal, either as
// ASCII art or as sixel graphics, and reports the character area it used.
package render

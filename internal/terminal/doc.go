// Package terminal owns the controlling terminal while media is on screen:
// a single-key cancellation monitor that switches input into cbreak mode for
// the duration of playback, and queries for the render area size.
package terminal

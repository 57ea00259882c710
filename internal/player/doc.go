// Package player runs the live playback loop: it pulls frames from a
// restartable frame source, draws each one at a fixed cadence, and stops
// as soon as the user asks.
package player

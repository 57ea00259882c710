package ffmpeg

import "time"

// FrameParams describes a decode of one input into a PNG frame stream.
type FrameParams struct {
	// Input Configuration
	Input    string        // URL or local path
	FPS      int           // output frames per second (0 = DefaultFPS)
	Duration time.Duration // stop after this much input (0 = whole input)

	// HTTP request identification (ignored for non-HTTP inputs)
	Referer      string // https://host/
	ClientHeader string // "X-Booruterm-Client: booruterm/1.0"
	UserAgent    string // Mozilla/5.0

	// Logging
	LogLevel string // ffmpeg -loglevel value without the "level+" prefix
}

// Defaults applied by BuildFrameArgs.
const (
	DefaultFPS       = 8
	DefaultUserAgent = "Mozilla/5.0"
	DefaultLogLevel  = "warning"
)

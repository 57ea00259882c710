package frames

import (
	"fmt"
	"time"

	"github.com/booruterm/booruterm/internal/ffmpeg"
	"github.com/booruterm/booruterm/internal/logging"
	"github.com/booruterm/booruterm/internal/process"
)

// Request identifies what to decode and at which cadence.
type Request struct {
	URL      string
	FPS      int
	Duration time.Duration // zero decodes until the input ends
	Referer  string
}

// Launcher starts ffmpeg decodes and wraps them in a Source.
type Launcher struct {
	FFmpegPath      string
	ClientHeader    string // "Name: value" sent with HTTP inputs
	UserAgent       string
	PollTimeout     time.Duration
	GracefulTimeout time.Duration
	KillTimeout     time.Duration
	Logger          logging.Logger
	FFmpegLogger    logging.Logger
}

// Open spawns a decoder for req and returns a Source reading its frames.
// Spawn and pipe failures are returned; nothing is left running on error.
func (l *Launcher) Open(req Request, stop func() bool) (*Source, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.GetLogger("frames")
	}

	bin := l.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}

	args := ffmpeg.BuildFrameArgs(&ffmpeg.FrameParams{
		Input:        req.URL,
		FPS:          req.FPS,
		Duration:     req.Duration,
		Referer:      req.Referer,
		ClientHeader: l.ClientHeader,
		UserAgent:    l.UserAgent,
	})

	proc := process.NewProcess("ffmpeg", append([]string{bin}, args...), logger)
	if l.FFmpegLogger != nil {
		proc.SetLogParser(l.FFmpegLogger, ffmpeg.ParseLogLevel)
	}
	proc.SetTimeouts(l.GracefulTimeout, l.KillTimeout)

	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	return NewSource(proc, Options{
		PollTimeout: l.PollTimeout,
		StopCheck:   stop,
	}, logger)
}

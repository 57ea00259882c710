package player

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/booruterm/booruterm/internal/events"
	"github.com/booruterm/booruterm/internal/frames"
	"github.com/booruterm/booruterm/internal/logging"
	"github.com/booruterm/booruterm/internal/render"
)

// Defaults applied by New.
const (
	DefaultFPS               = 8
	DefaultMaxRenderFailures = 10
)

// FrameSource is one pass over a stream of frames. Close releases the
// producer and must be safe to call after the sequence ended.
type FrameSource interface {
	Next() (frames.Frame, bool)
	Close() error
}

// SourceOpener starts a fresh pass over the same input. The source must
// consult stop before every bounded wait.
type SourceOpener func(stop func() bool) (FrameSource, error)

// Options configures a Player.
type Options struct {
	Name              string // identifies the input in logs and events
	FPS               int
	Area              render.Area
	MaxRenderFailures int // consecutive failures tolerated before giving up
}

// Player drives a frame source at a fixed cadence into a renderer.
type Player struct {
	renderer render.Renderer
	screen   io.Writer
	opts     Options
	interval time.Duration
	logger   logging.Logger
	bus      *events.Bus

	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a player drawing frames with renderer onto screen.
func New(renderer render.Renderer, screen io.Writer, opts Options, logger logging.Logger) *Player {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.MaxRenderFailures <= 0 {
		opts.MaxRenderFailures = DefaultMaxRenderFailures
	}
	if logger == nil {
		logger = logging.GetLogger("player")
	}
	return &Player{
		renderer: renderer,
		screen:   screen,
		opts:     opts,
		interval: time.Second / time.Duration(opts.FPS),
		logger:   logger,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// SetEventBus publishes playback events to bus.
func (p *Player) SetEventBus(bus *events.Bus) {
	p.bus = bus
}

// Interval returns the target time between frames.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// Play acquires the cancellation monitor and loops the source until the
// user stops it, ctx is cancelled, or a fatal error occurs. An exhausted
// source is reopened from the start. A pass that produces no frames at all
// is fatal, as are MaxRenderFailures consecutive render failures. The
// monitor is released and every opened source closed on all paths. Every
// call ends with a SessionEnded event, including those that fail before the
// session starts.
func (p *Player) Play(ctx context.Context, open SourceOpener, enter EnterFunc) (err error) {
	if !p.opts.Area.Valid() {
		return p.abort(newError(ErrCodeTerminalFailed, fmt.Sprintf("render area %s is empty", p.opts.Area), nil))
	}

	monitor, err := enter()
	if err != nil {
		return p.abort(newError(ErrCodeTerminalFailed, "acquire cancellation monitor", err))
	}
	defer monitor.Exit()

	sess := newSession(ctx, monitor)
	p.publish(events.PlaybackEvent{Kind: events.SessionStarted})
	p.logger.Info("Playback started", "source", p.opts.Name, "fps", p.opts.FPS, "area", p.opts.Area.String())

	failures := 0
	rendered := 0
	defer func() {
		reason := sess.Reason()
		if err != nil {
			reason = "error"
		}
		p.publish(events.PlaybackEvent{Kind: events.SessionEnded, Reason: reason, Err: err})
		p.logger.Info("Playback ended", "source", p.opts.Name, "reason", reason, "rendered", rendered)
	}()

	for pass := 1; ; pass++ {
		if sess.Cancelled() {
			return nil
		}
		if pass > 1 {
			p.publish(events.PlaybackEvent{Kind: events.SourceRestart, Pass: pass})
			p.logger.Debug("Restarting frame source", "pass", pass)
		}

		src, openErr := open(sess.Cancelled)
		if openErr != nil {
			return newError(ErrCodeSourceFailed, "start frame source", openErr)
		}

		yielded, n, passErr := p.runPass(sess, src, pass, &failures)
		rendered += n
		if cerr := src.Close(); cerr != nil {
			p.logger.Warn("Failed to close frame source", "error", cerr)
		}
		if passErr != nil {
			return passErr
		}
		if sess.Cancelled() {
			return nil
		}
		if yielded == 0 {
			return newError(ErrCodeNoFrames, fmt.Sprintf("pass %d produced no frames", pass), nil)
		}
	}
}

// runPass renders frames from src until it ends or the session is cancelled.
// It returns how many frames the source yielded and how many were drawn.
func (p *Player) runPass(sess *Session, src FrameSource, pass int, failures *int) (yielded, rendered int, err error) {
	for {
		frame, ok := src.Next()
		if !ok {
			return yielded, rendered, nil
		}
		yielded++

		start := p.now()
		rerr := p.draw(frame.Data)
		elapsed := p.now().Sub(start)

		if rerr != nil {
			*failures++
			p.logger.Warn("Dropped frame", "pass", pass, "seq", frame.Seq, "failures", *failures, "error", rerr)
			p.publish(events.PlaybackEvent{Kind: events.FrameDropped, Pass: pass, Seq: frame.Seq, Err: rerr})
			if *failures >= p.opts.MaxRenderFailures {
				return yielded, rendered, newError(ErrCodeRenderFailed,
					fmt.Sprintf("%d consecutive frames failed to render", *failures), rerr)
			}
		} else {
			*failures = 0
			rendered++
			p.publish(events.PlaybackEvent{Kind: events.FrameRendered, Pass: pass, Seq: frame.Seq, RenderTime: elapsed})
		}

		if sess.Cancelled() {
			return yielded, rendered, nil
		}

		if wait := p.interval - elapsed; wait > 0 {
			p.sleep(wait)
		}
	}
}

// abort reports a session that failed before it started.
func (p *Player) abort(err error) error {
	p.publish(events.PlaybackEvent{Kind: events.SessionEnded, Reason: "error", Err: err})
	p.logger.Warn("Playback not started", "source", p.opts.Name, "error", err)
	return err
}

func (p *Player) draw(frame []byte) error {
	if err := render.ClearScreen(p.screen); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	if _, err := p.renderer.Render(frame, p.opts.Area); err != nil {
		return err
	}
	return nil
}

func (p *Player) publish(ev events.PlaybackEvent) {
	if p.bus == nil {
		return
	}
	ev.Source = p.opts.Name
	ev.Timestamp = p.now()
	p.bus.Publish(ev)
}

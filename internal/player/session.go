package player

import "context"

// Monitor reports a pending user stop request without blocking and is
// released exactly once by Exit.
type Monitor interface {
	Check() bool
	Exit()
}

// EnterFunc acquires the cancellation monitor for one playback.
type EnterFunc func() (Monitor, error)

// Session latches cancellation: once Cancelled reports true it stays true
// and the monitor is not consulted again.
type Session struct {
	ctx       context.Context
	monitor   Monitor
	cancelled bool
	reason    string
}

func newSession(ctx context.Context, monitor Monitor) *Session {
	return &Session{ctx: ctx, monitor: monitor}
}

// Cancelled reports whether playback must stop.
func (s *Session) Cancelled() bool {
	if s.cancelled {
		return true
	}
	switch {
	case s.ctx.Err() != nil:
		s.cancel("signal")
	case s.monitor.Check():
		s.cancel("key")
	}
	return s.cancelled
}

// Reason names what cancelled the session, or "" while it runs.
func (s *Session) Reason() string {
	return s.reason
}

func (s *Session) cancel(reason string) {
	s.cancelled = true
	s.reason = reason
}

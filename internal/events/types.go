package events

import (
	"sync"
	"time"
)

// Event type constants for kelindar/event.
const (
	TypePlayback uint32 = iota + 1
	TypePostFetched
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// flushMarker is implemented by events that can carry a Bus.Flush marker.
type flushMarker interface {
	flushGroup() *sync.WaitGroup
}

// PlaybackKind distinguishes the steps of one playback session. All of them
// travel as a single event type so a subscriber sees them in order.
type PlaybackKind string

// Playback kinds.
const (
	SessionStarted PlaybackKind = "started"
	FrameRendered  PlaybackKind = "frame_rendered"
	FrameDropped   PlaybackKind = "frame_dropped"
	SourceRestart  PlaybackKind = "restart"
	SessionEnded   PlaybackKind = "ended"
)

// PlaybackEvent reports progress of the playback loop.
type PlaybackEvent struct {
	Kind       PlaybackKind
	Source     string
	Pass       int           // 1-based source pass, restarts increment it
	Seq        int           // frame position within the pass
	RenderTime time.Duration // FrameRendered only
	Reason     string        // SessionEnded: "key", "signal", "error"
	Err        error         // FrameDropped and failed SessionEnded
	Timestamp  time.Time

	flush *sync.WaitGroup
}

// Type returns the event type identifier for PlaybackEvent.
func (e PlaybackEvent) Type() uint32 { return TypePlayback }

func (e PlaybackEvent) flushGroup() *sync.WaitGroup { return e.flush }

// PostFetchedEvent is published after a post was selected from a provider.
type PostFetchedEvent struct {
	Provider  string
	PostURL   string
	Animated  bool
	Timestamp time.Time

	flush *sync.WaitGroup
}

// Type returns the event type identifier for PostFetchedEvent.
func (e PostFetchedEvent) Type() uint32 { return TypePostFetched }

func (e PostFetchedEvent) flushGroup() *sync.WaitGroup { return e.flush }

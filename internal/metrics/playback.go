// Package metrics provides Prometheus metrics for playback sessions.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/booruterm/booruterm/internal/events"
)

const namespace = "booruterm"

// Snapshot holds the current counter values.
type Snapshot struct {
	Sessions       int
	FramesRendered int
	FramesDropped  int
	Restarts       int
	PostsFetched   int
	LastEndReason  string
}

// Playback collects playback metrics from the event bus into its own
// registry.
type Playback struct {
	registry *prometheus.Registry

	sessions       *prometheus.CounterVec
	framesRendered prometheus.Counter
	framesDropped  prometheus.Counter
	restarts       prometheus.Counter
	renderSeconds  prometheus.Histogram
	postsFetched   *prometheus.CounterVec

	// Local cache for summaries.
	mu       sync.RWMutex
	snapshot Snapshot

	bus *events.Bus
}

// NewPlayback creates the playback collectors.
func NewPlayback() *Playback {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Playback{
		registry: reg,
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "sessions_total",
			Help:      "Playback sessions by end reason",
		}, []string{"reason"}),
		framesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "frames_rendered_total",
			Help:      "Frames drawn to the terminal",
		}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "frames_dropped_total",
			Help:      "Frames that failed to render",
		}),
		restarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "source_restarts_total",
			Help:      "Times the frame source was reopened to loop playback",
		}),
		renderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "render_seconds",
			Help:      "Time spent drawing one frame",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		postsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booru",
			Name:      "posts_fetched_total",
			Help:      "Posts fetched by provider and media kind",
		}, []string{"provider", "kind"}),
	}
}

// Attach subscribes to bus. The returned function unsubscribes.
func (p *Playback) Attach(bus *events.Bus) func() {
	p.bus = bus
	unsubPlayback := bus.Subscribe(p.onPlayback)
	unsubPosts := bus.Subscribe(p.onPostFetched)
	return func() {
		unsubPlayback()
		unsubPosts()
	}
}

func (p *Playback) onPlayback(e events.PlaybackEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case events.FrameRendered:
		p.framesRendered.Inc()
		p.renderSeconds.Observe(e.RenderTime.Seconds())
		p.snapshot.FramesRendered++
	case events.FrameDropped:
		p.framesDropped.Inc()
		p.snapshot.FramesDropped++
	case events.SourceRestart:
		p.restarts.Inc()
		p.snapshot.Restarts++
	case events.SessionEnded:
		p.sessions.WithLabelValues(e.Reason).Inc()
		p.snapshot.Sessions++
		p.snapshot.LastEndReason = e.Reason
	}
}

func (p *Playback) onPostFetched(e events.PostFetchedEvent) {
	kind := "static"
	if e.Animated {
		kind = "animated"
	}
	p.postsFetched.WithLabelValues(e.Provider, kind).Inc()

	p.mu.Lock()
	p.snapshot.PostsFetched++
	p.mu.Unlock()
}

// Flush blocks until every event published on the attached bus so far has
// been counted, or timeout elapses. Events are delivered asynchronously, so
// callers flush before reading final values.
func (p *Playback) Flush(timeout time.Duration) bool {
	if p.bus == nil {
		return true
	}
	return p.bus.Flush(timeout)
}

// Snapshot returns the current values.
func (p *Playback) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// WriteTextfile writes all collected metrics in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (p *Playback) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

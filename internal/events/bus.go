package events

import (
	"sync"
	"time"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher

	mu   sync.Mutex
	subs map[uint32]int // live subscribers per event type
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
		subs:       make(map[uint32]int),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(PlaybackEvent{Kind: FrameRendered})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case PlaybackEvent:
		event.Publish(b.dispatcher, e)
	case PostFetchedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type selects the event type; unknown handler types get a no-op.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e PlaybackEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(PlaybackEvent):
		return subscribe(b, h)
	case func(PostFetchedEvent):
		return subscribe(b, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel forwards events of type T into ch, dropping them when
// ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- T) func() {
	return subscribe(bus, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}

// Flush blocks until every subscriber has handled the events published
// before the call, or timeout elapses. Each subscriber handles its events in
// publish order, so a marker queued behind them marks the point.
func (b *Bus) Flush(timeout time.Duration) bool {
	var wg sync.WaitGroup

	b.mu.Lock()
	wg.Add(b.subs[TypePlayback] + b.subs[TypePostFetched])
	event.Publish(b.dispatcher, PlaybackEvent{flush: &wg})
	event.Publish(b.dispatcher, PostFetchedEvent{flush: &wg})
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// subscribe registers h and keeps flush markers away from it.
func subscribe[T Event](b *Bus, h func(T)) func() {
	var zero T
	typ := zero.Type()

	b.mu.Lock()
	b.subs[typ]++
	unsub := event.Subscribe(b.dispatcher, func(e T) {
		if m, ok := any(e).(flushMarker); ok {
			if wg := m.flushGroup(); wg != nil {
				wg.Done()
				return
			}
		}
		h(e)
	})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.subs[typ]--
			b.mu.Unlock()
			unsub()
		})
	}
}

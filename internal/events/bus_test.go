package events

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan PlaybackEvent, 1)

	unsub := bus.Subscribe(func(e PlaybackEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(PlaybackEvent{Kind: FrameRendered, Source: "https://example.com/a.webm", Seq: 3})

	got := receive(t, received)
	if got.Kind != FrameRendered || got.Seq != 3 {
		t.Errorf("got %+v, want frame_rendered seq 3", got)
	}
}

func TestBus_PlaybackOrder(t *testing.T) {
	bus := New()
	received := make(chan PlaybackEvent, 16)
	defer SubscribeToChannel[PlaybackEvent](bus, received)()

	kinds := []PlaybackKind{SessionStarted, FrameRendered, FrameDropped, SourceRestart, FrameRendered, SessionEnded}
	for i, k := range kinds {
		bus.Publish(PlaybackEvent{Kind: k, Seq: i})
	}

	for i, want := range kinds {
		got := receive(t, received)
		if got.Kind != want || got.Seq != i {
			t.Fatalf("event %d = %s/%d, want %s/%d", i, got.Kind, got.Seq, want, i)
		}
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	received1 := make(chan PostFetchedEvent, 1)
	received2 := make(chan PostFetchedEvent, 1)

	defer bus.Subscribe(func(e PostFetchedEvent) { received1 <- e })()
	defer bus.Subscribe(func(e PostFetchedEvent) { received2 <- e })()

	bus.Publish(PostFetchedEvent{Provider: "rule34", Animated: true})

	if got := receive(t, received1); got.Provider != "rule34" {
		t.Errorf("subscriber 1 got %+v", got)
	}
	if got := receive(t, received2); !got.Animated {
		t.Errorf("subscriber 2 got %+v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PlaybackEvent, 1)

	unsub := bus.Subscribe(func(e PlaybackEvent) {
		received <- e
	})

	bus.Publish(PlaybackEvent{Kind: FrameDropped, Err: errors.New("bad png")})
	receive(t, received)

	unsub()

	bus.Publish(PlaybackEvent{Kind: FrameDropped})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestBus_FlushWaitsForSlowSubscriber(t *testing.T) {
	bus := New()
	var handled atomic.Int32

	defer bus.Subscribe(func(PostFetchedEvent) {
		time.Sleep(20 * time.Millisecond)
		handled.Add(1)
	})()
	defer bus.Subscribe(func(PlaybackEvent) { handled.Add(1) })()

	bus.Publish(PostFetchedEvent{Provider: "gelbooru"})
	bus.Publish(PostFetchedEvent{Provider: "gelbooru"})
	bus.Publish(PlaybackEvent{Kind: SessionEnded})

	if !bus.Flush(time.Second) {
		t.Fatal("Flush() timed out")
	}
	if got := handled.Load(); got != 3 {
		t.Errorf("handled %d events before Flush returned, want 3", got)
	}
}

func TestBus_FlushMarkerHidden(t *testing.T) {
	bus := New()
	received := make(chan PlaybackEvent, 4)
	defer SubscribeToChannel[PlaybackEvent](bus, received)()

	if !bus.Flush(time.Second) {
		t.Fatal("Flush() timed out")
	}
	select {
	case e := <-received:
		t.Errorf("subscriber saw %+v", e)
	default:
	}
}

func TestBus_FlushWithoutSubscribers(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(PlaybackEvent) {})
	unsub()
	unsub()

	if !bus.Flush(100 * time.Millisecond) {
		t.Error("Flush() timed out with no subscribers")
	}
}

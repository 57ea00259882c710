package logging

import (
	"log/slog"
	"sync"
	"time"
)

// LogEntry represents a single log record kept in the ring buffer.
type LogEntry struct {
	Timestamp  time.Time
	Level      slog.Level
	Module     string
	Message    string
	Attributes map[string]any
}

// RingBuffer is a thread-safe circular buffer for log entries.
type RingBuffer struct {
	entries []LogEntry
	size    int
	head    int
	count   int
	mu      sync.RWMutex
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Write adds a log entry to the buffer, overwriting the oldest entry if full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size

	if rb.count < rb.size {
		rb.count++
	}
}

// Tail returns up to n of the newest entries at or above minLevel in
// chronological order. n <= 0 means no limit.
func (rb *RingBuffer) Tail(n int, minLevel slog.Level) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var picked []LogEntry
	// Walk newest to oldest, then reverse.
	for i := 0; i < rb.count; i++ {
		idx := (rb.head - 1 - i + rb.size) % rb.size
		e := rb.entries[idx]
		if e.Level < minLevel {
			continue
		}
		picked = append(picked, e)
		if n > 0 && len(picked) == n {
			break
		}
	}

	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

// Count returns the number of entries in the buffer.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

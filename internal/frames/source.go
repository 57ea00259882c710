package frames

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/booruterm/booruterm/internal/logging"
)

// DefaultPollTimeout bounds how long Next waits on a silent producer before
// re-evaluating its stop check.
const DefaultPollTimeout = 50 * time.Millisecond

// Frame is one complete encoded still image.
type Frame struct {
	Data []byte
	Seq  int // 1-based position within the source
}

// Child is a running process that writes concatenated frames to Output.
// Stop must terminate the process, close Output and return within a bounded
// grace period.
type Child interface {
	Output() *os.File
	Exited() bool
	Stop() int
}

// Options configures a Source.
type Options struct {
	Marker      []byte        // end-of-frame marker, PNGTrailer when empty
	PollTimeout time.Duration // bounded wait per poll, DefaultPollTimeout when zero
	StopCheck   func() bool   // cooperative cancellation, nil never stops
}

// Source is a lazy, cancellable sequence of frames read from a Child.
// A Source exclusively owns its child and pipe until Close.
type Source struct {
	child    Child
	reader   *Reader
	splitter *Splitter
	pending  [][]byte
	timeout  time.Duration
	stop     func() bool
	logger   logging.Logger
	seq      int
	finished bool
	closed   bool
}

// NewSource wires child's output into a Reader and a Splitter.
// On error the child is stopped before returning.
func NewSource(child Child, opts Options, logger logging.Logger) (*Source, error) {
	out := child.Output()
	if out == nil {
		child.Stop()
		return nil, errors.New("child has no output pipe")
	}

	reader, err := NewReader(int(out.Fd()), child.Exited)
	if err != nil {
		child.Stop()
		return nil, fmt.Errorf("set pipe non-blocking: %w", err)
	}

	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	stop := opts.StopCheck
	if stop == nil {
		stop = func() bool { return false }
	}

	return &Source{
		child:    child,
		reader:   reader,
		splitter: NewSplitter(opts.Marker),
		timeout:  timeout,
		stop:     stop,
		logger:   logger,
	}, nil
}

// Next returns the next complete frame. It returns false when the stop check
// fires, when the producer has exited and every complete frame has been
// returned, or after Close. The stop check runs before every bounded wait and
// before handing out each frame, so a stalled producer delays a stop by at
// most one poll timeout.
func (s *Source) Next() (Frame, bool) {
	for {
		if s.closed || s.stop() {
			return Frame{}, false
		}

		if len(s.pending) > 0 {
			data := s.pending[0]
			s.pending[0] = nil
			s.pending = s.pending[1:]
			s.seq++
			return Frame{Data: data, Seq: s.seq}, true
		}

		if s.finished {
			return Frame{}, false
		}

		chunk, more := s.reader.Poll(s.timeout)
		s.pending = append(s.pending, s.splitter.Feed(chunk)...)
		if !more {
			s.finished = true
			if rest := s.splitter.Buffered(); rest > 0 {
				s.logger.Debug("Discarding incomplete trailing frame", "bytes", rest)
				s.splitter.Reset()
			}
		}
	}
}

// Yielded returns how many frames Next has returned.
func (s *Source) Yielded() int {
	return s.seq
}

// Close stops the child, closes its pipe and drops buffered frames.
// It is safe to call more than once.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil
	s.splitter.Reset()

	exitCode := s.child.Stop()
	s.logger.Debug("Frame source closed", "frames", s.seq, "exit_code", exitCode)
	return nil
}

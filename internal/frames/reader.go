package frames

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

const defaultReadSize = 64 * 1024

// Reader performs bounded, non-blocking reads on a child's output pipe.
type Reader struct {
	fd     int
	exited func() bool
	buf    []byte
	closed bool
}

// NewReader switches fd to non-blocking mode and returns a reader for it.
// exited reports whether the producing process has terminated.
func NewReader(fd int, exited func() bool) (*Reader, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &Reader{
		fd:     fd,
		exited: exited,
		buf:    make([]byte, defaultReadSize),
	}, nil
}

// Poll waits up to timeout for the pipe to become readable and performs at
// most one read. It returns the bytes read (possibly none) and whether more
// bytes may follow.
//
// Once the process has exited, Poll drains everything still buffered in the
// pipe without waiting and reports the stream as finished. A read that would
// block is not an error; any other read failure finishes the stream.
// The returned slice is only valid until the next call.
func (r *Reader) Poll(timeout time.Duration) ([]byte, bool) {
	if r.closed {
		return nil, false
	}

	if r.exited() {
		return r.drain(), false
	}

	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, true
		}
		r.closed = true
		return nil, false
	}
	if n == 0 {
		return nil, true
	}

	return r.readOnce()
}

// readOnce performs a single non-blocking read.
func (r *Reader) readOnce() ([]byte, bool) {
	n, err := unix.Read(r.fd, r.buf)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return nil, true
	case err != nil, n == 0:
		// Read error or writer closed: nothing more can arrive.
		r.closed = true
		return nil, false
	}
	return r.buf[:n], true
}

// drain reads until end-of-stream without waiting between reads.
func (r *Reader) drain() []byte {
	var out []byte
	for {
		n, err := unix.Read(r.fd, r.buf)
		if err != nil && errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n == 0 {
			break
		}
		out = append(out, r.buf[:n]...)
	}
	r.closed = true
	return out
}

package frames

import "bytes"

// PNGTrailer is the IEND chunk type followed by its fixed CRC. Every PNG
// file ends with exactly these eight bytes.
var PNGTrailer = []byte("IEND\xaeB`\x82")

// Splitter cuts a concatenated stream of encoded images into frames.
// It is not safe for concurrent use.
type Splitter struct {
	marker []byte
	buf    []byte
}

// NewSplitter creates a splitter that ends frames at marker.
// A nil or empty marker selects PNGTrailer.
func NewSplitter(marker []byte) *Splitter {
	if len(marker) == 0 {
		marker = PNGTrailer
	}
	return &Splitter{marker: bytes.Clone(marker)}
}

// Feed appends chunk to the internal buffer and returns every frame that is
// now complete, marker included. It returns nil when no marker has arrived.
//
// Returned frames share storage with the splitter but are never written to
// again; callers may keep them across later Feed calls.
func (s *Splitter) Feed(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}

	// Only the tail of the old buffer can hold the start of a marker that
	// completes inside chunk.
	start := len(s.buf) - len(s.marker) + 1
	if start < 0 {
		start = 0
	}
	s.buf = append(s.buf, chunk...)

	var out [][]byte
	for {
		i := bytes.Index(s.buf[start:], s.marker)
		if i < 0 {
			break
		}
		end := start + i + len(s.marker)
		out = append(out, s.buf[:end:end])
		s.buf = s.buf[end:]
		start = 0
	}

	if len(s.buf) == 0 {
		s.buf = nil
	}
	return out
}

// Buffered returns the number of bytes held for an incomplete frame.
func (s *Splitter) Buffered() int {
	return len(s.buf)
}

// Reset discards any partial frame.
func (s *Splitter) Reset() {
	s.buf = nil
}

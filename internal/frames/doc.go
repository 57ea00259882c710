// Package frames turns the byte stream of a frame-emitting child process into
// discrete still-image frames.
//
// The package is built from three layers:
//
// Splitter accumulates arbitrary chunks and cuts complete frames at a fixed
// end-of-frame marker (the PNG IEND trailer by default):
//   - A frame is emitted only once its marker has arrived
//   - A marker split across two chunks is still found once both are fed
//   - Bytes already emitted are never emitted again
//
// Reader owns the non-blocking read end of the child's stdout:
//   - Poll waits at most one timeout for readability, then reads once
//   - After the child exits it drains the pipe without waiting
//   - Read errors other than EAGAIN end the stream
//
// Source composes a Child, a Reader and a Splitter into a pull-based
// sequence of frames with cooperative cancellation:
//
//	src, err := launcher.Open(frames.Request{URL: url, FPS: 8}, stop)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//	for {
//	    frame, ok := src.Next()
//	    if !ok {
//	        break
//	    }
//	    draw(frame.Data)
//	}
package frames

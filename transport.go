// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
)

// FrameDelimiter terminates every frame on the wire.
const FrameDelimiter = '\n'

// Transport defaults.
const (
	DefaultReadChunkSize = 8192
	DefaultMaxFrameSize  = 16 * 1024 * 1024
)

// FrameWriter writes delimited frames to a byte stream.
type FrameWriter struct {
	w   io.Writer
	buf []byte
}

// NewFrameWriter returns a FrameWriter over w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes the frame text followed by the delimiter in a single write.
func (fw *FrameWriter) WriteFrame(frame EncodedFrame) error {
	fw.buf = append(fw.buf[:0], frame...)
	fw.buf = append(fw.buf, FrameDelimiter)

	if _, err := fw.w.Write(fw.buf); err != nil {
		return connectionError("FrameWriter.WriteFrame", "failed to write frame", err)
	}
	return nil
}

// ReceiveBuffer accumulates bytes from one connection until they form
// complete frames. It is owned by a single reader and is not safe for
// concurrent use.
type ReceiveBuffer struct {
	buf     []byte
	maxSize int
}

// NewReceiveBuffer returns a ReceiveBuffer that rejects an unterminated
// remainder longer than maxSize bytes. A maxSize of 0 disables the limit.
func NewReceiveBuffer(maxSize int) *ReceiveBuffer {
	return &ReceiveBuffer{maxSize: maxSize}
}

// Poll appends data and returns every frame completed by it, in arrival
// order. The unterminated tail stays buffered for the next call.
func (rb *ReceiveBuffer) Poll(data []byte) ([]EncodedFrame, error) {
	if len(data) == 0 {
		return nil, nil
	}
	rb.buf = append(rb.buf, data...)

	var frames []EncodedFrame
	start := 0
	for {
		i := bytes.IndexByte(rb.buf[start:], FrameDelimiter)
		if i < 0 {
			break
		}
		frames = append(frames, EncodedFrame(rb.buf[start:start+i]))
		start += i + 1
	}

	rest := len(rb.buf) - start
	if start > 0 {
		copy(rb.buf, rb.buf[start:])
		rb.buf = rb.buf[:rest]
	}

	if rb.maxSize > 0 && rest > rb.maxSize {
		rb.buf = rb.buf[:0]
		return frames, malformedFrameError("ReceiveBuffer.Poll",
			fmt.Sprintf("unterminated frame exceeds %d bytes", rb.maxSize), nil)
	}
	return frames, nil
}

// Pending returns the number of buffered bytes not yet part of a frame.
func (rb *ReceiveBuffer) Pending() int {
	return len(rb.buf)
}

// Reset discards any buffered bytes.
func (rb *ReceiveBuffer) Reset() {
	rb.buf = rb.buf[:0]
}

// PollFrames is the value form of ReceiveBuffer.Poll: it returns the frames
// completed by data together with the updated buffer, leaving buf untouched.
// When the unterminated tail grows past the maximum size the returned
// buffer is empty and the error is ErrMalformedFrame.
func PollFrames(buf ReceiveBuffer, data []byte) ([]EncodedFrame, ReceiveBuffer, error) {
	next := ReceiveBuffer{
		buf:     append([]byte(nil), buf.buf...),
		maxSize: buf.maxSize,
	}
	frames, err := next.Poll(data)
	return frames, next, err
}

// Chunk is one read from a ChunkReader. Err is set on the final chunk only.
type Chunk struct {
	Data []byte
	Err  error
}

// ChunkReader reads a stream on its own goroutine and hands over whatever
// arrived, so that a tick loop can take data without ever blocking.
type ChunkReader struct {
	r      io.Reader
	size   int
	chunks chan Chunk
	done   chan struct{}
}

// NewChunkReader starts reading r in chunks of at most size bytes.
func NewChunkReader(r io.Reader, size int) *ChunkReader {
	if size <= 0 {
		size = DefaultReadChunkSize
	}
	cr := &ChunkReader{
		r:      r,
		size:   size,
		chunks: make(chan Chunk, 64),
		done:   make(chan struct{}),
	}
	go cr.readLoop()
	return cr
}

func (cr *ChunkReader) readLoop() {
	defer close(cr.chunks)

	for {
		buf := make([]byte, cr.size)
		n, err := cr.r.Read(buf)
		if n > 0 {
			select {
			case cr.chunks <- Chunk{Data: buf[:n]}:
			case <-cr.done:
				return
			}
		}
		if err != nil {
			select {
			case cr.chunks <- Chunk{Err: err}:
			case <-cr.done:
			}
			return
		}
	}
}

// Drain returns every chunk that has arrived so far without blocking.
// A non-nil error means the stream has ended; io.EOF signals a peer close.
func (cr *ChunkReader) Drain() ([][]byte, error) {
	var out [][]byte
	for {
		select {
		case c, ok := <-cr.chunks:
			if !ok {
				return out, io.EOF
			}
			if c.Err != nil {
				return out, c.Err
			}
			out = append(out, c.Data)
		default:
			return out, nil
		}
	}
}

// Stop releases the reader goroutine once the underlying reader returns.
func (cr *ChunkReader) Stop() {
	select {
	case <-cr.done:
	default:
		close(cr.done)
	}
}

// isTimeout reports whether err is an I/O deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isClosed reports whether err means the peer or the local side closed the stream.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// Package source normalizes the values an archive entry can be built from
// and drains streamed values into memory.
//
// A byte source is one of: nil (absent), a string, anything that satisfies
// io.Reader, or a []byte that is already binary.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedSource is returned for values outside the byte source variants.
var ErrUnsupportedSource = errors.New("unsupported byte source")

// StreamError reports a failure signalled by the producer during collection.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Value is the canonical form of a byte source: either an in-memory buffer
// or a stream handle. The zero Value is an empty buffer.
type Value struct {
	buf    []byte
	stream io.ReadCloser
}

// IsStream reports whether v holds a stream rather than a buffer.
func (v Value) IsStream() bool {
	return v.stream != nil
}

// Bytes returns the buffer, or nil when v holds a stream.
func (v Value) Bytes() []byte {
	if v.stream != nil {
		return nil
	}
	if v.buf == nil {
		return []byte{}
	}
	return v.buf
}

// Len returns the buffer length, or -1 for a stream of unknown length.
func (v Value) Len() int64 {
	if v.stream != nil {
		return -1
	}
	return int64(len(v.buf))
}

// Reader returns a reader over the value. For a stream it is the stream
// handle itself, so it can be consumed only once.
func (v Value) Reader() io.ReadCloser {
	if v.stream != nil {
		return v.stream
	}
	return io.NopCloser(bytes.NewReader(v.buf))
}

// passThrough is the buffering stage a stream is routed through on
// normalization. Nothing is read from upstream until the consumer reads.
type passThrough struct {
	r        *bufio.Reader
	upstream io.Reader
}

func newPassThrough(upstream io.Reader) *passThrough {
	return &passThrough{
		r:        bufio.NewReader(upstream),
		upstream: upstream,
	}
}

func (p *passThrough) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *passThrough) Close() error {
	if c, ok := p.upstream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

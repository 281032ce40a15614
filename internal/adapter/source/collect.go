package source

import (
	"errors"
	"io"
)

const chunkSize = 32 * 1024

// Collect drains r into a single buffer. Chunks are kept in arrival order
// and copied once into a buffer of their total length when r reports
// io.EOF. Any other read error aborts collection with a *StreamError.
//
// Collect applies no size limit; use it only for bounded sources.
func Collect(r io.Reader) ([]byte, error) {
	var (
		chunks [][]byte
		size   int
	)

	p := make([]byte, chunkSize)
	for {
		n, err := r.Read(p)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, p[:n])
			chunks = append(chunks, chunk)
			size += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StreamError{Err: err}
		}
	}

	buf := make([]byte, size)
	offset := 0
	for _, chunk := range chunks {
		offset += copy(buf[offset:], chunk)
	}
	return buf, nil
}

// CollectValue returns the buffer held by v, collecting it first when v is
// a stream. The stream is closed once drained.
func CollectValue(v Value) ([]byte, error) {
	if !v.IsStream() {
		return v.Bytes(), nil
	}

	rc := v.Reader()
	buf, err := Collect(rc)
	if cerr := rc.Close(); err == nil && cerr != nil {
		return nil, &StreamError{Err: cerr}
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

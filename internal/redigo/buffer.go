package redigo

import (
	"io"
	"slices"
)

const (
	minReadSize = 4096
	// Buffers grown past this by one large request are dropped once drained.
	maxRetainedBuffer = 64 * 1024
)

// connectionBuffer accumulates bytes read from one connection until they
// form complete requests. Unconsumed bytes survive across reads.
type connectionBuffer struct {
	data  []byte
	start int
}

func (buffer *connectionBuffer) unread() []byte {
	return buffer.data[buffer.start:]
}

func (buffer *connectionBuffer) consume(n int) {
	buffer.start += n
	if buffer.start < len(buffer.data) {
		return
	}

	buffer.start = 0
	if cap(buffer.data) > maxRetainedBuffer {
		buffer.data = nil
		return
	}
	buffer.data = buffer.data[:0]
}

// fill performs a single Read into the spare capacity of the buffer,
// moving unconsumed bytes to the front and growing it first if needed.
func (buffer *connectionBuffer) fill(reader io.Reader) (int, error) {
	if buffer.start > 0 {
		n := copy(buffer.data, buffer.data[buffer.start:])
		buffer.data = buffer.data[:n]
		buffer.start = 0
	}
	if cap(buffer.data)-len(buffer.data) < minReadSize {
		buffer.data = slices.Grow(buffer.data, minReadSize)
	}

	n, err := reader.Read(buffer.data[len(buffer.data):cap(buffer.data)])
	buffer.data = buffer.data[:len(buffer.data)+n]
	return n, err
}

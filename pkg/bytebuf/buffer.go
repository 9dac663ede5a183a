// Package bytebuf provides the growable byte container used to accumulate
// markup tokens.
//
// A Buffer has two modes. In write mode bytes are appended with Put and the
// buffer never allocates: a full buffer reports false and the caller picks a
// growth strategy (ExpGrow or LnGrow). Flip switches to read mode, where
// Bytes exposes the written region. Clear returns to an empty write mode and
// keeps the capacity for reuse.
package bytebuf

import "math"

// Buffer is an append-only byte container with explicit growth strategies.
// The zero value is an empty buffer with no capacity.
type Buffer struct {
	data    []byte
	start   int
	limit   int
	reading bool
}

// New returns an empty buffer with the given capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// SetLimit bounds the capacity growth functions may reach.
// Zero or a negative value removes the bound.
func (b *Buffer) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	b.limit = limit
}

// Limit reports the growth bound, or zero when unbounded.
func (b *Buffer) Limit() int {
	return b.limit
}

// Put appends c. It reports false when the buffer is full or in read mode.
func (b *Buffer) Put(c byte) bool {
	if b.reading || len(b.data) == cap(b.data) {
		return false
	}
	b.data = append(b.data, c)
	return true
}

// Extend grows the capacity by n bytes, preserving content.
// It reports false when n is not positive or the limit would be exceeded.
func (b *Buffer) Extend(n int) bool {
	if n <= 0 {
		return false
	}
	capNow := cap(b.data)
	if capNow > math.MaxInt-n {
		return false
	}
	newCap := capNow + n
	if b.limit > 0 && newCap > b.limit {
		if capNow >= b.limit {
			return false
		}
		newCap = b.limit
	}
	next := make([]byte, len(b.data), newCap)
	copy(next, b.data)
	b.data = next
	return true
}

// ExpGrow doubles the capacity. It suits runs of unknown, possibly large, length.
func (b *Buffer) ExpGrow() bool {
	n := cap(b.data)
	if n == 0 {
		n = minGrow
	}
	return b.Extend(n)
}

// LnGrow adds half the current capacity. It suits bounded tokens.
func (b *Buffer) LnGrow() bool {
	n := cap(b.data) >> 1
	if n < minGrow {
		n = minGrow
	}
	return b.Extend(n)
}

const minGrow = 16

// Grow ensures room for n more bytes using exponential growth.
func (b *Buffer) Grow(n int) bool {
	for cap(b.data)-len(b.data) < n {
		if !b.ExpGrow() {
			return false
		}
	}
	return true
}

// Flip switches the buffer to read mode.
func (b *Buffer) Flip() {
	b.reading = true
	b.start = 0
}

// Clear empties the buffer and returns it to write mode. Capacity is kept.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.start = 0
	b.reading = false
}

// Shift drops n bytes from the front of the readable region.
func (b *Buffer) Shift(n int) {
	if n <= 0 {
		return
	}
	b.start += n
	if b.start > len(b.data) {
		b.start = len(b.data)
	}
}

// Bytes returns the readable region in read mode, or the written region in
// write mode. The slice aliases the buffer until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data[b.start:]
}

// Slice returns data[start:end] of the written region, or nil when out of range.
func (b *Buffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > len(b.data) {
		return nil
	}
	return b.data[start:end]
}

// Len reports the number of bytes in Bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.start
}

// Last returns the last written byte, or 0 when empty.
func (b *Buffer) Last() byte {
	if len(b.data) == 0 {
		return 0
	}
	return b.data[len(b.data)-1]
}

// Truncate drops written bytes beyond n.
func (b *Buffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(b.data) {
		b.data = b.data[:n]
	}
	if b.start > len(b.data) {
		b.start = len(b.data)
	}
}

// Tail exposes the unused capacity for direct writes, e.g. by a transcoder.
// Commit written bytes with Advance.
func (b *Buffer) Tail() []byte {
	if b.reading {
		return nil
	}
	return b.data[len(b.data):cap(b.data)]
}

// Advance commits n bytes written into Tail.
func (b *Buffer) Advance(n int) {
	if n <= 0 {
		return
	}
	if n > cap(b.data)-len(b.data) {
		n = cap(b.data) - len(b.data)
	}
	b.data = b.data[:len(b.data)+n]
}

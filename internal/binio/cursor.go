// Package binio provides a sequential big-endian reader over an in-memory buffer.
package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a read would run past the end of the buffer.
var ErrOutOfBounds = errors.New("binio: read out of bounds")

// OutOfBoundsError describes a failed read. It matches ErrOutOfBounds with errors.Is.
type OutOfBoundsError struct {
	Offset int // cursor offset at the time of the read
	Need   int // bytes the read required
	Have   int // bytes remaining in the buffer
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("binio: read of %d bytes at offset %d exceeds buffer (%d remaining)", e.Need, e.Offset, e.Have)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// Cursor reads big-endian values from a fixed byte slice. A failed
// fixed-width read leaves the offset where it was.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool { return c.off >= len(c.data) }

func (c *Cursor) need(n int) error {
	if n < 0 || n > len(c.data)-c.off {
		return &OutOfBoundsError{Offset: c.off, Need: n, Have: len(c.data) - c.off}
	}
	return nil
}

// ReadUint8 reads one byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

// ReadInt32BE reads a big-endian signed 32-bit integer.
func (c *Cursor) ReadInt32BE() (int32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(c.data[c.off:]))
	c.off += 4
	return v, nil
}

// ReadFloat32BE reads a big-endian IEEE-754 single.
func (c *Cursor) ReadFloat32BE() (float32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(c.data[c.off:]))
	c.off += 4
	return v, nil
}

// ReadBytes returns the next n bytes. The slice aliases the buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Peek returns up to n bytes without advancing. ok is false when fewer
// than n bytes remain; the returned slice then holds what is left.
func (c *Cursor) Peek(n int) (b []byte, ok bool) {
	if n < 0 {
		return nil, false
	}
	end := c.off + n
	if end > len(c.data) {
		return c.data[c.off:], false
	}
	return c.data[c.off:end], true
}

// ReadFixedString reads bytes until a NUL or until maxLen bytes have been
// consumed. The NUL is consumed but not returned. Running out of buffer
// first returns the bytes read so far together with an out-of-bounds error.
func (c *Cursor) ReadFixedString(maxLen int) (string, error) {
	start := c.off
	for i := 0; i < maxLen; i++ {
		if c.off >= len(c.data) {
			return string(c.data[start:c.off]), &OutOfBoundsError{Offset: c.off, Need: 1, Have: 0}
		}
		b := c.data[c.off]
		c.off++
		if b == 0 {
			return string(c.data[start : c.off-1]), nil
		}
	}
	return string(c.data[start:c.off]), nil
}

// ReadUntil consumes bytes up to and including the first occurrence of
// delim and returns the bytes before it. found is false when the buffer
// ends first; everything that remained is then returned.
func (c *Cursor) ReadUntil(delim []byte) (b []byte, found bool) {
	rest := c.data[c.off:]
	if i := bytes.Index(rest, delim); i >= 0 && len(delim) > 0 {
		c.off += i + len(delim)
		return rest[:i], true
	}
	c.off = len(c.data)
	return rest, false
}

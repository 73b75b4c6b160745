// Package chardec accumulates UTF-8 bytes one at a time and tracks which of
// them already form complete characters.
//
// It serves byte-synchronous consumers such as line editors: the producer
// pushes each byte as it arrives, the consumer may look at or retract the last
// single-byte character, and reads the text only once no character is pending.
package chardec

import (
	"fmt"

	"github.com/rony4d/go-textwindow/utils/fast"
	"github.com/rony4d/go-textwindow/utils/utf"
)

// CharDecoder is a byte → character accumulator. The zero value is not
// usable; call New.
type CharDecoder struct {
	buf *fast.Writer

	// remaining counts the bytes the pending character still needs.
	remaining int
	length    int
}

// New creates an empty decoder.
func New() *CharDecoder {
	return &CharDecoder{
		buf: fast.NewWriter(make([]byte, 0, 64)),
	}
}

// Push appends b. Outside a multi-byte character b must be a valid UTF-8
// start byte; inside one it is taken as the next continuation byte.
func (d *CharDecoder) Push(b byte) error {
	if d.remaining == 0 {
		n := utf.UTF8.DecodeLength(uint32(b))
		if n == 0 {
			return fmt.Errorf("%w: %#02x", ErrInvalidStartByte, b)
		}
		d.remaining = n
	}
	d.buf.WriteByte(b)
	d.remaining--
	if d.remaining == 0 {
		d.length++
	}
	return nil
}

// Peek returns the last pushed byte, complete or not.
func (d *CharDecoder) Peek() (byte, bool) {
	return d.buf.Last()
}

// Pop removes the last character. Only a complete single-byte character can
// be popped; popping repeatedly walks back over a run of them.
func (d *CharDecoder) Pop() (byte, error) {
	if d.remaining != 0 {
		return 0, ErrIncomplete
	}
	last, ok := d.buf.Last()
	if !ok {
		return 0, ErrEmpty
	}
	if last >= 0x80 {
		return 0, ErrNotSingleByte
	}
	d.buf.Truncate(1)
	d.length--
	return last, nil
}

// Text decodes everything pushed so far.
func (d *CharDecoder) Text() (string, error) {
	if d.remaining != 0 {
		return "", ErrIncomplete
	}
	return string(d.buf.Bytes()), nil
}

// Clear drops every byte.
func (d *CharDecoder) Clear() error {
	if d.remaining != 0 {
		return ErrIncomplete
	}
	d.buf.Reset()
	d.length = 0
	return nil
}

// Complete reports whether the buffer ends on a character boundary.
func (d *CharDecoder) Complete() bool {
	return d.remaining == 0
}

// Remaining returns the number of bytes the pending character still needs.
func (d *CharDecoder) Remaining() int {
	return d.remaining
}

// Len returns the number of complete characters.
func (d *CharDecoder) Len() int {
	return d.length
}

// Bytes returns a copy of the accumulated bytes.
func (d *CharDecoder) Bytes() []byte {
	return append([]byte(nil), d.buf.Bytes()...)
}

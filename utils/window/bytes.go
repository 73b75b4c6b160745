package window

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/common/littleendian"

	"github.com/rony4d/go-textwindow/utils/fast"
)

// ByteCursor is the cursor of a ByteWindow.
type ByteCursor = ChunkCursor[byte]

// ByteWindow is a Window of bytes with fixed-width scalar reads.
//
// Every read returns (value, ok, err). ok == false with a nil error means the
// window ends before enough bytes are available: the read is incomplete and
// may succeed once more data is pushed. Reads never move the cursor.
type ByteWindow struct {
	Window[byte]
}

// NewByteWindow creates an empty byte window.
func NewByteWindow() *ByteWindow {
	return &ByteWindow{}
}

// peek returns width bytes starting at c. When the bytes lie inside the
// cursor's chunk the result aliases that chunk, otherwise they are gathered
// into a scratch buffer by walking a clone of c across chunk boundaries.
func (w *ByteWindow) peek(c *ByteCursor, width int) ([]byte, bool, error) {
	if c.w != &w.Window {
		return nil, false, ErrForeignCursor
	}
	if err := c.check(); err != nil {
		return nil, false, err
	}

	i := c.locate()
	if i == w.chunks.Len() {
		return nil, false, nil
	}
	ch := w.chunks.At(i)
	off := int(c.pos - ch.start)
	if off+width <= len(ch.data) {
		return ch.data[off : off+width], true, nil
	}

	scratch := fast.NewWriter(make([]byte, 0, width))
	walker := *c
	for scratch.Len() < width {
		b, err := walker.Next()
		if err == ErrEnd {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		scratch.WriteByte(b)
	}
	return scratch.Bytes(), true, nil
}

// ReadUint reads an unsigned scalar of 1, 2 or 4 bytes at c.
func (w *ByteWindow) ReadUint(c *ByteCursor, width int, littleEndian bool) (uint32, bool, error) {
	if width != 1 && width != 2 && width != 4 {
		return 0, false, fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
	raw, ok, err := w.peek(c, width)
	if err != nil || !ok {
		return 0, ok, err
	}
	switch {
	case width == 1:
		return uint32(raw[0]), true, nil
	case width == 2 && littleEndian:
		return uint32(littleendian.BytesToUint16(raw)), true, nil
	case width == 2:
		return uint32(bigendian.BytesToUint16(raw)), true, nil
	case littleEndian:
		return littleendian.BytesToUint32(raw), true, nil
	default:
		return bigendian.BytesToUint32(raw), true, nil
	}
}

func (w *ByteWindow) ReadUint8(c *ByteCursor) (uint8, bool, error) {
	v, ok, err := w.ReadUint(c, 1, false)
	return uint8(v), ok, err
}

func (w *ByteWindow) ReadInt8(c *ByteCursor) (int8, bool, error) {
	v, ok, err := w.ReadUint(c, 1, false)
	return int8(v), ok, err
}

func (w *ByteWindow) ReadUint16BE(c *ByteCursor) (uint16, bool, error) {
	v, ok, err := w.ReadUint(c, 2, false)
	return uint16(v), ok, err
}

func (w *ByteWindow) ReadUint16LE(c *ByteCursor) (uint16, bool, error) {
	v, ok, err := w.ReadUint(c, 2, true)
	return uint16(v), ok, err
}

func (w *ByteWindow) ReadInt16BE(c *ByteCursor) (int16, bool, error) {
	v, ok, err := w.ReadUint(c, 2, false)
	return int16(v), ok, err
}

func (w *ByteWindow) ReadInt16LE(c *ByteCursor) (int16, bool, error) {
	v, ok, err := w.ReadUint(c, 2, true)
	return int16(v), ok, err
}

func (w *ByteWindow) ReadUint32BE(c *ByteCursor) (uint32, bool, error) {
	return w.ReadUint(c, 4, false)
}

func (w *ByteWindow) ReadUint32LE(c *ByteCursor) (uint32, bool, error) {
	return w.ReadUint(c, 4, true)
}

func (w *ByteWindow) ReadInt32BE(c *ByteCursor) (int32, bool, error) {
	v, ok, err := w.ReadUint(c, 4, false)
	return int32(v), ok, err
}

func (w *ByteWindow) ReadInt32LE(c *ByteCursor) (int32, bool, error) {
	v, ok, err := w.ReadUint(c, 4, true)
	return int32(v), ok, err
}

// Bytes concatenates the live bytes into a fresh slice.
func (w *ByteWindow) Bytes() []byte {
	out := fast.NewWriter(make([]byte, 0, w.Len()))
	for i := 0; i < w.chunks.Len(); i++ {
		out.Write(w.chunks.At(i).data)
	}
	return out.Bytes()
}

package window

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteWindow_Reads(t *testing.T) {
	// 0x80 0xFF | 0x01 | 0x02 0x7F, so every multi-byte read from the first
	// position crosses at least one chunk boundary.
	newWindow := func(t *testing.T) (*ByteWindow, *ByteCursor) {
		w := NewByteWindow()
		for _, ch := range [][]byte{{0x80, 0xFF}, {0x01}, {0x02, 0x7F}} {
			require.NoError(t, w.Push(ch))
		}
		c, err := w.Begin()
		require.NoError(t, err)
		return w, c
	}

	for name, tc := range map[string]struct {
		read func(*ByteWindow, *ByteCursor) (int64, bool, error)
		exp  int64
	}{
		"Uint8": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadUint8(c)
			return int64(v), ok, err
		}, 0x80},
		"Int8": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadInt8(c)
			return int64(v), ok, err
		}, -128},
		"Uint16BE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadUint16BE(c)
			return int64(v), ok, err
		}, 0x80FF},
		"Uint16LE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadUint16LE(c)
			return int64(v), ok, err
		}, 0xFF80},
		"Int16BE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadInt16BE(c)
			return int64(v), ok, err
		}, -0x7F01},
		"Int16LE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadInt16LE(c)
			return int64(v), ok, err
		}, -0x80},
		"Uint32BE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadUint32BE(c)
			return int64(v), ok, err
		}, 0x80FF0102},
		"Uint32LE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadUint32LE(c)
			return int64(v), ok, err
		}, 0x0201FF80},
		"Int32BE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadInt32BE(c)
			return int64(v), ok, err
		}, -0x7F00FEFE},
		"Int32LE": {func(w *ByteWindow, c *ByteCursor) (int64, bool, error) {
			v, ok, err := w.ReadInt32LE(c)
			return int64(v), ok, err
		}, 0x0201FF80},
	} {
		t.Run(name, func(t *testing.T) {
			w, c := newWindow(t)
			v, ok, err := tc.read(w, c)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, tc.exp, v)
			require.Equal(t, int64(0), c.Offset())
		})
	}
}

func TestByteWindow_InChunkRead(t *testing.T) {
	w := NewByteWindow()
	require.NoError(t, w.Push([]byte{0xAA, 0x12, 0x34, 0x56, 0x78}))
	c, err := w.Begin()
	require.NoError(t, err)
	_, err = c.Step()
	require.NoError(t, err)

	v, ok, err := w.ReadUint32BE(c)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(0x12345678), v)
}

func TestByteWindow_IncompleteRead(t *testing.T) {
	require := require.New(t)

	w := NewByteWindow()
	require.NoError(w.Push([]byte{0x00}))
	require.NoError(w.Push([]byte{0x01, 0x02}))
	c, err := w.Begin()
	require.NoError(err)

	_, ok, err := w.ReadUint32LE(c)
	require.NoError(err)
	require.False(ok)

	require.NoError(w.Push([]byte{0x03}))
	v, ok, err := w.ReadUint32BE(c)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint32(0x00010203), v)

	end, err := w.End()
	require.NoError(err)
	_, ok, err = w.ReadUint8(end)
	require.NoError(err)
	require.False(ok)
}

func TestByteWindow_ReadErrors(t *testing.T) {
	require := require.New(t)

	w, other := NewByteWindow(), NewByteWindow()
	require.NoError(w.Push([]byte{1, 2, 3, 4}))
	require.NoError(other.Push([]byte{1}))
	c, err := w.Begin()
	require.NoError(err)

	_, _, err = w.ReadUint(c, 3, false)
	require.ErrorIs(err, ErrUnsupportedWidth)

	o, err := other.Begin()
	require.NoError(err)
	_, _, err = w.ReadUint8(o)
	require.ErrorIs(err, ErrForeignCursor)

	_, err = w.ShiftAll()
	require.NoError(err)
	_, _, err = w.ReadUint16BE(c)
	require.ErrorIs(err, ErrStaleCursor)
}

func TestByteWindow_Bytes(t *testing.T) {
	w := NewByteWindow()
	require.NoError(t, w.Push([]byte("hel")))
	require.NoError(t, w.Push([]byte("lo")))
	c, err := w.Begin()
	require.NoError(t, err)
	_, err = c.Step()
	require.NoError(t, err)
	_, err = w.Shift(c)
	require.NoError(t, err)
	require.Equal(t, "ello", string(w.Bytes()))
}

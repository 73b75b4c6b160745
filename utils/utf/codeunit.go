package utf

import (
	"fmt"

	"github.com/rony4d/go-textwindow/utils/window"
)

// ByteOrderMark is U+FEFF, the leading code point that signals byte order.
const ByteOrderMark = 0xFEFF

// UnitCursor is the cursor of a CodeUnitWindow.
type UnitCursor = window.TrimmedCursor[uint32, *window.ByteCursor]

// CodeUnitWindow groups the bytes of a ByteWindow into fixed-width code units.
//
// For widths 2 and 4 the byte order is resolved once, as soon as the first
// unit is visible: a leading byte-order mark read little-endian, then
// big-endian, locks the order and is consumed; anything else locks the
// configured default and consumes nothing. Cursors taken before resolution go
// stale if a mark is consumed.
type CodeUnitWindow struct {
	*window.Trimmed[uint32, *window.ByteCursor]

	bytes     *window.ByteWindow
	width     int
	defaultLE bool
	detectBOM bool

	littleEndian bool
	resolved     bool
}

// NewCodeUnitWindow layers code units of `width` bytes over `bytes`.
func NewCodeUnitWindow(bytes *window.ByteWindow, width int, defaultLittleEndian, detectBOM bool) (*CodeUnitWindow, error) {
	if width != 1 && width != 2 && width != 4 {
		return nil, fmt.Errorf("%w: code unit width %d", window.ErrUnsupportedWidth, width)
	}
	w := &CodeUnitWindow{
		bytes:     bytes,
		width:     width,
		defaultLE: defaultLittleEndian,
		detectBOM: detectBOM,
	}
	w.Trimmed = window.NewTrimmed[uint32, *window.ByteCursor](bytes, unitLayer{w})
	return w, nil
}

// Width returns the code unit size in bytes.
func (w *CodeUnitWindow) Width() int {
	return w.width
}

// Endianness returns the locked byte order, and false while it is still undecided.
func (w *CodeUnitWindow) Endianness() (littleEndian, resolved bool) {
	return w.littleEndian, w.resolved
}

// Bytes returns the underlying byte window.
func (w *CodeUnitWindow) Bytes() *window.ByteWindow {
	return w.bytes
}

func (w *CodeUnitWindow) lock(littleEndian bool) {
	w.littleEndian, w.resolved = littleEndian, true
}

type unitLayer struct {
	w *CodeUnitWindow
}

func (l unitLayer) Prepare() error {
	w := l.w
	if w.resolved || w.bytes.Disposed() || w.bytes.Len() == 0 {
		return nil
	}
	if w.width == 1 || !w.detectBOM {
		w.lock(w.defaultLE)
		return nil
	}

	c, err := w.bytes.Begin()
	if err != nil {
		return err
	}
	le, ok, err := w.bytes.ReadUint(c, w.width, true)
	if err != nil || !ok {
		return err
	}
	be, _, err := w.bytes.ReadUint(c, w.width, false)
	if err != nil {
		return err
	}
	switch {
	case le == ByteOrderMark:
		w.lock(true)
	case be == ByteOrderMark:
		w.lock(false)
	default:
		w.lock(w.defaultLE)
		return nil
	}
	for i := 0; i < w.width; i++ {
		c.Step()
	}
	_, err = w.bytes.Shift(c)
	return err
}

func (l unitLayer) StepUnit(c *window.ByteCursor) error {
	for i := 0; i < l.w.width; i++ {
		ok, err := c.Step()
		if err != nil {
			return err
		}
		if !ok {
			panic(window.Invariantf("code unit at %d crosses the end", c.Offset()))
		}
	}
	return nil
}

func (l unitLayer) StepUnitBack(c, begin *window.ByteCursor) error {
	if c.Offset()-begin.Offset() < int64(l.w.width) {
		panic(window.Invariantf("code unit before %d crosses the begin", c.Offset()))
	}
	for i := 0; i < l.w.width; i++ {
		if _, err := c.StepBack(); err != nil {
			return err
		}
	}
	return nil
}

func (l unitLayer) Trim(end, begin *window.ByteCursor) error {
	rem := (end.Offset() - begin.Offset()) % int64(l.w.width)
	for ; rem > 0; rem-- {
		if _, err := end.StepBack(); err != nil {
			return err
		}
	}
	return nil
}

func (l unitLayer) NextUnit(c *window.ByteCursor) (uint32, error) {
	w := l.w
	v, ok, err := w.bytes.ReadUint(c, w.width, w.littleEndian)
	if err != nil {
		return 0, err
	}
	if !ok {
		panic(window.Invariantf("code unit at %d is incomplete", c.Offset()))
	}
	return v, l.StepUnit(c)
}

package utf

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rony4d/go-textwindow/utils/window"
)

// PointCursor is the cursor of a CodePointWindow.
type PointCursor = window.TrimmedCursor[rune, *UnitCursor]

// CodePointWindow groups the code units of a CodeUnitWindow into Unicode code
// points. Its end is held back to the last complete code point, so a sequence
// split across chunks becomes visible only once its final unit arrives.
type CodePointWindow struct {
	*window.Trimmed[rune, *UnitCursor]

	units  *CodeUnitWindow
	format Format

	// stripBOM drops a leading UTF-8 encoded U+FEFF. Wider formats consume
	// their mark in the code unit layer.
	stripBOM   bool
	bomChecked bool
}

// Options configure the window chain built by the format constructors.
type Options struct {
	// LittleEndian is the byte order used when no byte-order mark is found.
	LittleEndian bool

	// DetectBOM consumes a leading byte-order mark.
	DetectBOM bool
}

// NewCodePointWindow layers code points of format f over units. The unit
// width must match the format.
func NewCodePointWindow(units *CodeUnitWindow, f Format, stripBOM bool) (*CodePointWindow, error) {
	if units.Width() != f.UnitWidth() {
		return nil, fmt.Errorf("%w: %s needs %d-byte units, got %d",
			window.ErrUnsupportedWidth, f.Name(), f.UnitWidth(), units.Width())
	}
	w := &CodePointWindow{
		units:    units,
		format:   f,
		stripBOM: stripBOM && f.UnitWidth() == 1,
	}
	w.Trimmed = window.NewTrimmed[rune, *UnitCursor](units, pointLayer{w})
	return w, nil
}

// NewWindow builds the full byte → code unit → code point chain for f.
func NewWindow(f Format, opts Options) (*CodePointWindow, error) {
	units, err := NewCodeUnitWindow(window.NewByteWindow(), f.UnitWidth(), opts.LittleEndian, opts.DetectBOM)
	if err != nil {
		return nil, err
	}
	return NewCodePointWindow(units, f, opts.DetectBOM)
}

func mustWindow(w *CodePointWindow, err error) *CodePointWindow {
	if err != nil {
		panic(err)
	}
	return w
}

func NewUTF8Window(opts Options) *CodePointWindow {
	return mustWindow(NewWindow(UTF8, opts))
}

func NewUTF16Window(opts Options) *CodePointWindow {
	return mustWindow(NewWindow(UTF16, opts))
}

func NewUTF32Window(opts Options) *CodePointWindow {
	return mustWindow(NewWindow(UTF32, opts))
}

func (w *CodePointWindow) Format() Format {
	return w.format
}

// Units returns the code unit window this window reads from.
func (w *CodePointWindow) Units() *CodeUnitWindow {
	return w.units
}

// Bytes returns the byte window at the bottom of the chain.
func (w *CodePointWindow) Bytes() *window.ByteWindow {
	return w.units.Bytes()
}

// Decode reads the code point at c and advances c past it.
func (w *CodePointWindow) Decode(c *PointCursor) (rune, error) {
	return c.Next()
}

// Collect decodes every visible code point without moving the window.
func (w *CodePointWindow) Collect() ([]rune, error) {
	c, err := w.Begin()
	if err != nil {
		return nil, err
	}
	var out []rune
	for {
		r, err := c.Next()
		if errors.Is(err, window.ErrEnd) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}

var utf8Mark = [...]uint32{0xEF, 0xBB, 0xBF}

type pointLayer struct {
	w *CodePointWindow
}

func (l pointLayer) Prepare() error {
	w := l.w
	if !w.stripBOM || w.bomChecked || w.units.Disposed() {
		return nil
	}
	c, err := w.units.Begin()
	if err != nil {
		return err
	}
	for _, want := range utf8Mark {
		u, err := c.Next()
		if errors.Is(err, window.ErrEnd) {
			return nil
		}
		if err != nil {
			return err
		}
		if u != want {
			w.bomChecked = true
			return nil
		}
	}
	w.bomChecked = true
	_, err = w.units.Shift(c)
	return err
}

func (l pointLayer) NextUnit(c *UnitCursor) (rune, error) {
	f := l.w.format
	first, err := c.Value()
	if errors.Is(err, window.ErrEnd) {
		panic(window.Invariantf("%s code point read at the end", f.Name()))
	}
	if err != nil {
		return utf8.RuneError, err
	}
	n := f.DecodeLength(first)
	if n == 0 {
		return utf8.RuneError, fmt.Errorf("%w: %s unit %#x cannot start a code point", window.ErrMalformed, f.Name(), first)
	}

	var buf [4]uint32
	units := buf[:0]
	scan, err := c.Copy()
	if err != nil {
		return utf8.RuneError, err
	}
	for len(units) < n {
		u, err := scan.Next()
		if errors.Is(err, window.ErrEnd) {
			// The visible range only ends inside a sequence when a later unit
			// starts a new code point.
			for _, u := range units[1:] {
				if f.DecodeLength(u) != 0 {
					return utf8.RuneError, fmt.Errorf("%w: %s sequence interrupted by unit %#x", window.ErrMalformed, f.Name(), u)
				}
			}
			panic(window.Invariantf("%s code point truncated at the end", f.Name()))
		}
		if err != nil {
			return utf8.RuneError, err
		}
		units = append(units, u)
	}
	r, err := f.DecodeValue(units)
	if err != nil {
		return r, err
	}
	*c = *scan
	return r, nil
}

func (l pointLayer) StepUnit(c *UnitCursor) error {
	_, err := l.NextUnit(c)
	return err
}

// StepUnitBack scans back at most MaxUnits units for the start of the code
// point that ends at c.
func (l pointLayer) StepUnitBack(c, begin *UnitCursor) error {
	f := l.w.format
	scan, err := c.Copy()
	if err != nil {
		return err
	}
	for i := 1; i <= f.MaxUnits(); i++ {
		at, err := scan.Matches(begin)
		if err != nil {
			return err
		}
		if at {
			break
		}
		if _, err := scan.StepBack(); err != nil {
			return err
		}
		u, err := scan.Value()
		if err != nil {
			return err
		}
		switch n := f.DecodeLength(u); {
		case n == 0:
			continue
		case n != i:
			return fmt.Errorf("%w: %s unit %#x starts %d units, found %d", window.ErrMalformed, f.Name(), u, n, i)
		}
		*c = *scan
		return nil
	}
	return fmt.Errorf("%w: no %s start unit before cursor", window.ErrMalformed, f.Name())
}

// Trim pulls end back to just after the last complete code point. The scan is
// bounded by MaxUnits: a longer run of non-start units is malformed data and
// stays visible so that reading it reports ErrMalformed.
func (l pointLayer) Trim(end, begin *UnitCursor) error {
	f := l.w.format
	scan, err := end.Copy()
	if err != nil {
		return err
	}
	for i := 1; i <= f.MaxUnits(); i++ {
		at, err := scan.Matches(begin)
		if err != nil {
			return err
		}
		if at {
			*end = *scan
			return nil
		}
		if _, err := scan.StepBack(); err != nil {
			return err
		}
		u, err := scan.Value()
		if err != nil {
			return err
		}
		n := f.DecodeLength(u)
		if n == 0 {
			continue
		}
		if n <= i {
			for ; n > 0; n-- {
				if _, err := scan.Step(); err != nil {
					return err
				}
			}
		}
		*end = *scan
		return nil
	}
	return nil
}

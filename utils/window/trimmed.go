package window

import "fmt"

// trimmed.go implements the shared machinery of layered windows: a window
// that re-reads an inner window as a sequence of larger units (code units over
// bytes, code points over code units) and hides trailing inner elements that do
// not yet form a complete unit.
//
// The visible range of a trimmed window is [begin, end) of the inner window,
// where end is the inner end pulled back by the layer's Trim hook. Both bounds
// are memoised per inner version: any push, shift or dispose below this layer
// changes the version and forces a recompute on the next access.

// Layer supplies the unit-level operations of a trimmed window. Each hook moves
// an inner cursor it owns; callers guarantee the cursor is not at a boundary
// that would make the move impossible.
type Layer[T any, C any] interface {
	// StepUnit advances c past exactly one unit.
	StepUnit(c C) error

	// StepUnitBack moves c back to the start of the previous unit, never
	// before begin.
	StepUnitBack(c, begin C) error

	// Trim moves end (a copy of the inner end) back to just after the last
	// complete unit, never before begin.
	Trim(end, begin C) error

	// NextUnit decodes the unit starting at c and advances past it.
	NextUnit(c C) (T, error)
}

// Preparer is implemented by layers that must inspect the first inner data
// before bounds can be computed (byte-order mark detection). Prepare runs after
// every push and before every bounds computation and may shift the inner window.
type Preparer interface {
	Prepare() error
}

// Trimmed is a window of T layered over an inner window with cursors of type C.
type Trimmed[T any, C Inner[C]] struct {
	inner InnerWindow[C]
	layer Layer[T, C]

	begin    C
	beginVer uint64
	hasBegin bool

	end    C
	endVer uint64
	hasEnd bool
}

// NewTrimmed layers `layer` over `inner`.
func NewTrimmed[T any, C Inner[C]](inner InnerWindow[C], layer Layer[T, C]) *Trimmed[T, C] {
	return &Trimmed[T, C]{
		inner: inner,
		layer: layer,
	}
}

func (w *Trimmed[T, C]) prepare() error {
	if p, ok := w.layer.(Preparer); ok {
		return p.Prepare()
	}
	return nil
}

// innerBegin returns the memoised inner begin. The result is shared: callers
// must Copy it before moving it.
func (w *Trimmed[T, C]) innerBegin() (C, error) {
	var zero C
	if err := w.prepare(); err != nil {
		return zero, err
	}
	if w.hasBegin && w.beginVer == w.inner.Version() && !w.begin.Stale() {
		return w.begin, nil
	}
	b, err := w.inner.Begin()
	if err != nil {
		return zero, err
	}
	w.begin, w.beginVer, w.hasBegin = b, w.inner.Version(), true
	return b, nil
}

// innerEnd returns the memoised trimmed inner end, see innerBegin.
func (w *Trimmed[T, C]) innerEnd() (C, error) {
	var zero C
	b, err := w.innerBegin()
	if err != nil {
		return zero, err
	}
	if w.hasEnd && w.endVer == w.inner.Version() && !w.end.Stale() {
		return w.end, nil
	}
	e, err := w.inner.End()
	if err != nil {
		return zero, err
	}
	if err := w.layer.Trim(e, b); err != nil {
		return zero, err
	}
	w.end, w.endVer, w.hasEnd = e, w.inner.Version(), true
	return e, nil
}

func (w *Trimmed[T, C]) invalidate() {
	var zero C
	w.begin, w.hasBegin = zero, false
	w.end, w.hasEnd = zero, false
}

// Push appends a raw chunk to the innermost window.
func (w *Trimmed[T, C]) Push(chunk []byte) error {
	if err := w.inner.Push(chunk); err != nil {
		return err
	}
	w.hasEnd = false
	return w.prepare()
}

// Begin returns a cursor at the first visible unit.
func (w *Trimmed[T, C]) Begin() (*TrimmedCursor[T, C], error) {
	b, err := w.innerBegin()
	if err != nil {
		return nil, err
	}
	return w.wrap(b)
}

// End returns a cursor one past the last complete unit.
func (w *Trimmed[T, C]) End() (*TrimmedCursor[T, C], error) {
	e, err := w.innerEnd()
	if err != nil {
		return nil, err
	}
	return w.wrap(e)
}

// BeginInto repositions c at the first visible unit instead of allocating a
// new cursor. A stale cursor from any trimmed window of the same type may be
// recycled this way; a nil c allocates.
func (w *Trimmed[T, C]) BeginInto(c *TrimmedCursor[T, C]) (*TrimmedCursor[T, C], error) {
	b, err := w.innerBegin()
	if err != nil {
		return nil, err
	}
	return w.wrapInto(c, b)
}

// EndInto repositions c one past the last complete unit, see BeginInto.
func (w *Trimmed[T, C]) EndInto(c *TrimmedCursor[T, C]) (*TrimmedCursor[T, C], error) {
	e, err := w.innerEnd()
	if err != nil {
		return nil, err
	}
	return w.wrapInto(c, e)
}

func (w *Trimmed[T, C]) wrap(inner C) (*TrimmedCursor[T, C], error) {
	return w.wrapInto(nil, inner)
}

func (w *Trimmed[T, C]) wrapInto(c *TrimmedCursor[T, C], inner C) (*TrimmedCursor[T, C], error) {
	cp, err := inner.Copy()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &TrimmedCursor[T, C]{}
	}
	*c = TrimmedCursor[T, C]{w: w, inner: cp}
	return c, nil
}

// Shift evicts every unit before `to` and returns the evicted raw bytes.
// A nil `to` evicts every visible unit; trailing partial data stays buffered.
func (w *Trimmed[T, C]) Shift(to *TrimmedCursor[T, C]) ([][]byte, error) {
	if w.inner.Disposed() {
		return nil, ErrDisposed
	}
	if to == nil {
		end, err := w.End()
		if err != nil {
			return nil, err
		}
		to = end
	}
	if to.w != w {
		return nil, ErrForeignCursor
	}
	if to.Stale() {
		return nil, ErrStaleCursor
	}
	out, err := w.inner.Shift(to.inner)
	w.invalidate()
	return out, err
}

// ShiftAll evicts every visible unit.
func (w *Trimmed[T, C]) ShiftAll() ([][]byte, error) {
	return w.Shift(nil)
}

// Dispose drains every buffered byte, including a trailing partial unit, and
// closes the window stack.
func (w *Trimmed[T, C]) Dispose() ([][]byte, error) {
	out, err := w.inner.Dispose()
	w.invalidate()
	return out, err
}

// IsEmpty reports whether no complete unit is visible.
func (w *Trimmed[T, C]) IsEmpty() (bool, error) {
	e, err := w.innerEnd()
	if err != nil {
		return false, err
	}
	return e.Matches(w.begin)
}

func (w *Trimmed[T, C]) Version() uint64 {
	return w.inner.Version()
}

func (w *Trimmed[T, C]) Disposed() bool {
	return w.inner.Disposed()
}

// TrimmedCursor is the cursor of a Trimmed window. It wraps a cursor of the
// inner window that always sits on a unit boundary.
type TrimmedCursor[T any, C Inner[C]] struct {
	w     *Trimmed[T, C]
	inner C
}

// Stale reports whether the cursor's position has been evicted.
func (c *TrimmedCursor[T, C]) Stale() bool {
	return c.inner.Stale()
}

func (c *TrimmedCursor[T, C]) check() error {
	if c.Stale() {
		return ErrStaleCursor
	}
	return nil
}

// Unwrap returns a copy of the inner cursor.
func (c *TrimmedCursor[T, C]) Unwrap() (C, error) {
	if err := c.check(); err != nil {
		var zero C
		return zero, err
	}
	return c.inner.Copy()
}

func (c *TrimmedCursor[T, C]) IsBegin() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	b, err := c.w.innerBegin()
	if err != nil {
		return false, err
	}
	return c.inner.Matches(b)
}

func (c *TrimmedCursor[T, C]) IsEnd() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	e, err := c.w.innerEnd()
	if err != nil {
		return false, err
	}
	return c.inner.Matches(e)
}

// Value decodes the unit under the cursor without moving it.
func (c *TrimmedCursor[T, C]) Value() (T, error) {
	var zero T
	end, err := c.IsEnd()
	if err != nil {
		return zero, err
	}
	if end {
		return zero, ErrEnd
	}
	moved, err := c.inner.Copy()
	if err != nil {
		return zero, err
	}
	return c.w.layer.NextUnit(moved)
}

// Next decodes the unit under the cursor and advances past it. On error the
// cursor does not move.
func (c *TrimmedCursor[T, C]) Next() (T, error) {
	var zero T
	end, err := c.IsEnd()
	if err != nil {
		return zero, err
	}
	if end {
		return zero, ErrEnd
	}
	moved, err := c.inner.Copy()
	if err != nil {
		return zero, err
	}
	v, err := c.w.layer.NextUnit(moved)
	if err != nil {
		return zero, err
	}
	c.inner = moved
	return v, nil
}

func (c *TrimmedCursor[T, C]) Step() (bool, error) {
	end, err := c.IsEnd()
	if err != nil || end {
		return false, err
	}
	moved, err := c.inner.Copy()
	if err != nil {
		return false, err
	}
	if err := c.w.layer.StepUnit(moved); err != nil {
		return false, err
	}
	c.inner = moved
	return true, nil
}

func (c *TrimmedCursor[T, C]) StepBack() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	b, err := c.w.innerBegin()
	if err != nil {
		return false, err
	}
	if at, err := c.inner.Matches(b); err != nil || at {
		return false, err
	}
	moved, err := c.inner.Copy()
	if err != nil {
		return false, err
	}
	if err := c.w.layer.StepUnitBack(moved, b); err != nil {
		return false, err
	}
	c.inner = moved
	return true, nil
}

// StepInner advances by a single inner element, leaving unit alignment. It is
// the resynchronisation primitive for consumers skipping malformed input.
func (c *TrimmedCursor[T, C]) StepInner() (bool, error) {
	end, err := c.IsEnd()
	if err != nil || end {
		return false, err
	}
	return c.inner.Step()
}

// Copy returns an independent cursor at the same position.
func (c *TrimmedCursor[T, C]) Copy() (*TrimmedCursor[T, C], error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	inner, err := c.inner.Copy()
	if err != nil {
		return nil, err
	}
	return &TrimmedCursor[T, C]{w: c.w, inner: inner}, nil
}

func (c *TrimmedCursor[T, C]) Clone() (Cursor[T], error) {
	cp, err := c.Copy()
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Matches reports whether both cursors point at the same position of the same window.
func (c *TrimmedCursor[T, C]) Matches(other *TrimmedCursor[T, C]) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	if other == nil {
		return false, nil
	}
	if err := other.check(); err != nil {
		return false, err
	}
	if c.w != other.w {
		return false, nil
	}
	return c.inner.Matches(other.inner)
}

func (c *TrimmedCursor[T, C]) Equals(other Cursor[T]) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	o, ok := other.(*TrimmedCursor[T, C])
	if !ok {
		if other != nil && other.Stale() {
			return false, ErrStaleCursor
		}
		return false, nil
	}
	return c.Matches(o)
}

// Invariantf builds the panic value for a broken layer invariant.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

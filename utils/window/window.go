package window

import (
	"fmt"

	"github.com/gammazero/deque"
)

// window.go implements the generic sliding window: an ordered buffer of
// immutable chunks that grows by Push at the tail and shrinks by Shift at the head.
//
// Positions are absolute. Every element gets the index it had in the stream of
// everything ever pushed, so evicting a prefix never renumbers the elements that
// remain. A cursor is stale exactly when its index falls below the head
// (the eviction watermark) or the window has been disposed.
//
// Chunks are kept by reference in a ring-buffer deque. Shift hands interior
// chunks back untouched and re-slices only the one chunk the cut point falls
// into; no element that stays in the window is ever copied.

type chunk[T any] struct {
	data  []T
	start int64 // absolute index of data[0]
}

func (c chunk[T]) end() int64 {
	return c.start + int64(len(c.data))
}

// Window is a sliding window over chunks of T. It is not safe for concurrent use.
type Window[T any] struct {
	chunks deque.Deque[chunk[T]]

	// base is the sequence number of chunks[0]. Cursors remember a chunk by
	// sequence number so that lookups survive evictions.
	base int64

	head  int64 // absolute index of the first live element
	count int64 // number of elements ever pushed

	version  uint64
	disposed bool
}

// New creates an empty window.
func New[T any]() *Window[T] {
	return &Window[T]{}
}

// Push appends a chunk. The chunk is retained by reference and must not be
// modified by the caller afterwards. Empty chunks are accepted and ignored.
func (w *Window[T]) Push(data []T) error {
	if w.disposed {
		return ErrDisposed
	}
	if data == nil {
		return ErrNilChunk
	}
	if len(data) == 0 {
		return nil
	}
	w.chunks.PushBack(chunk[T]{data: data, start: w.count})
	w.count += int64(len(data))
	w.version++
	return nil
}

// Begin returns a cursor at the first live element.
func (w *Window[T]) Begin() (*ChunkCursor[T], error) {
	return w.BeginInto(nil)
}

// End returns a cursor one past the last element.
func (w *Window[T]) End() (*ChunkCursor[T], error) {
	return w.EndInto(nil)
}

// BeginInto repositions c at the first live element instead of allocating a
// new cursor. A stale cursor from any window may be recycled this way; a nil c
// allocates.
func (w *Window[T]) BeginInto(c *ChunkCursor[T]) (*ChunkCursor[T], error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	if c == nil {
		c = &ChunkCursor[T]{}
	}
	*c = ChunkCursor[T]{w: w, seq: w.base, pos: w.head}
	return c, nil
}

// EndInto repositions c one past the last element, see BeginInto.
func (w *Window[T]) EndInto(c *ChunkCursor[T]) (*ChunkCursor[T], error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	if c == nil {
		c = &ChunkCursor[T]{}
	}
	*c = ChunkCursor[T]{w: w, seq: w.base + int64(w.chunks.Len()), pos: w.count}
	return c, nil
}

// Shift evicts every element before `to` and returns them in order, grouped by
// the chunks they were pushed in (the first and last group may be partial).
// A nil `to` evicts everything.
//
// Cursors positioned before `to` become stale; `to` itself and every cursor
// after it stay valid.
func (w *Window[T]) Shift(to *ChunkCursor[T]) ([][]T, error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	if to == nil {
		return w.evict(w.count), nil
	}
	if to.w != w {
		return nil, ErrForeignCursor
	}
	if to.Stale() {
		return nil, ErrStaleCursor
	}
	return w.evict(to.pos), nil
}

// ShiftAll evicts everything currently in the window.
func (w *Window[T]) ShiftAll() ([][]T, error) {
	return w.Shift(nil)
}

// Dispose evicts and returns everything still buffered and closes the window.
// Every later operation, including a second Dispose, fails with ErrDisposed.
func (w *Window[T]) Dispose() ([][]T, error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	out := w.evict(w.count)
	w.disposed = true
	w.chunks.Clear()
	return out, nil
}

func (w *Window[T]) evict(pos int64) [][]T {
	var out [][]T

	for w.chunks.Len() > 0 && w.chunks.Front().end() <= pos {
		out = append(out, w.chunks.PopFront().data)
		w.base++
	}
	if w.chunks.Len() > 0 && w.chunks.Front().start < pos {
		ch := w.chunks.Front()
		cut := int(pos - ch.start)
		out = append(out, ch.data[:cut:cut])
		ch.data = ch.data[cut:]
		ch.start = pos
		w.chunks.Set(0, ch)
	}

	if pos > w.head {
		w.head = pos
	}
	w.version++
	return out
}

// IsEmpty reports whether begin equals end.
func (w *Window[T]) IsEmpty() (bool, error) {
	if w.disposed {
		return false, ErrDisposed
	}
	return w.head == w.count, nil
}

// Len returns the number of live elements.
func (w *Window[T]) Len() int64 {
	return w.count - w.head
}

// Count returns the number of elements ever pushed.
func (w *Window[T]) Count() int64 {
	return w.count
}

// Head returns the absolute index of the first live element.
func (w *Window[T]) Head() int64 {
	return w.head
}

// Version changes on every push, shift and dispose.
func (w *Window[T]) Version() uint64 {
	return w.version
}

// Disposed reports whether Dispose has been called.
func (w *Window[T]) Disposed() bool {
	return w.disposed
}

// Distance returns the number of elements from `from` to `to`; negative when
// `to` comes first. A nil cursor belongs to no window.
func (w *Window[T]) Distance(from, to *ChunkCursor[T]) (int64, error) {
	for _, c := range []*ChunkCursor[T]{from, to} {
		if c == nil || c.w != w {
			return 0, ErrForeignCursor
		}
		if c.Stale() {
			return 0, ErrStaleCursor
		}
	}
	return to.pos - from.pos, nil
}

// ChunkCursor is the cursor of a Window.
type ChunkCursor[T any] struct {
	w   *Window[T]
	seq int64 // sequence number of the chunk holding pos; a hint only
	pos int64 // absolute element index
}

var _ Cursor[byte] = (*ChunkCursor[byte])(nil)
var _ Inner[*ChunkCursor[byte]] = (*ChunkCursor[byte])(nil)

// Stale reports whether the cursor's position has been evicted.
func (c *ChunkCursor[T]) Stale() bool {
	return c.w == nil || c.w.disposed || c.pos < c.w.head
}

func (c *ChunkCursor[T]) check() error {
	if c.Stale() {
		return ErrStaleCursor
	}
	return nil
}

// Offset returns the absolute index of the element under the cursor.
func (c *ChunkCursor[T]) Offset() int64 {
	return c.pos
}

// locate returns the deque index of the chunk holding pos, or w.chunks.Len()
// when the cursor is at the end. The cursor must not be stale.
func (c *ChunkCursor[T]) locate() int {
	w := c.w
	n := w.chunks.Len()
	i := int(c.seq - w.base)
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	for i > 0 && w.chunks.At(i-1).end() > c.pos {
		i--
	}
	for i < n && w.chunks.At(i).end() <= c.pos {
		i++
	}
	c.seq = w.base + int64(i)
	return i
}

// Value returns the element under the cursor, or ErrEnd at the end.
func (c *ChunkCursor[T]) Value() (T, error) {
	var zero T
	if err := c.check(); err != nil {
		return zero, err
	}
	i := c.locate()
	if i == c.w.chunks.Len() {
		return zero, ErrEnd
	}
	ch := c.w.chunks.At(i)
	return ch.data[c.pos-ch.start], nil
}

// Next returns the element under the cursor and advances past it.
func (c *ChunkCursor[T]) Next() (T, error) {
	v, err := c.Value()
	if err != nil {
		return v, err
	}
	c.pos++
	return v, nil
}

func (c *ChunkCursor[T]) IsBegin() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	return c.pos == c.w.head, nil
}

func (c *ChunkCursor[T]) IsEnd() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	return c.pos == c.w.count, nil
}

func (c *ChunkCursor[T]) Step() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	if c.pos == c.w.count {
		return false, nil
	}
	c.pos++
	return true, nil
}

func (c *ChunkCursor[T]) StepBack() (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	if c.pos == c.w.head {
		return false, nil
	}
	c.pos--
	return true, nil
}

// Copy returns an independent cursor at the same position.
func (c *ChunkCursor[T]) Copy() (*ChunkCursor[T], error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (c *ChunkCursor[T]) Clone() (Cursor[T], error) {
	cp, err := c.Copy()
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Matches reports whether both cursors point at the same position of the same window.
func (c *ChunkCursor[T]) Matches(other *ChunkCursor[T]) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	if other == nil {
		return false, nil
	}
	if err := other.check(); err != nil {
		return false, err
	}
	return c.w == other.w && c.pos == other.pos, nil
}

func (c *ChunkCursor[T]) Equals(other Cursor[T]) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	o, ok := other.(*ChunkCursor[T])
	if !ok {
		if other != nil && other.Stale() {
			return false, ErrStaleCursor
		}
		return false, nil
	}
	return c.Matches(o)
}

func (c *ChunkCursor[T]) String() string {
	return fmt.Sprintf("cursor@%d", c.pos)
}

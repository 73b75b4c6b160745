package window

// Cursor is a bidirectional position inside a window.
//
// A cursor never mutates its window. It stays usable until the window evicts
// its position (Shift past it, or Dispose); from then on every method except
// Stale returns ErrStaleCursor. Two cursors are equal when they point into
// the same window at the same logical position.
type Cursor[T any] interface {
	// Value returns the element under the cursor, or ErrEnd at the end.
	Value() (T, error)

	// Next returns the element under the cursor and advances past it.
	Next() (T, error)

	IsBegin() (bool, error)
	IsEnd() (bool, error)

	// Step advances by one element. It reports false if already at the end.
	Step() (bool, error)

	// StepBack retreats by one element. It reports false if already at the begin.
	StepBack() (bool, error)

	// Clone returns an independent cursor at the same position.
	Clone() (Cursor[T], error)

	Equals(other Cursor[T]) (bool, error)

	// Stale reports whether the cursor's position has been evicted.
	Stale() bool
}

// Inner is what a layered window needs from the cursors of the window it wraps.
// C is the concrete cursor type itself.
type Inner[C any] interface {
	// Copy is Clone with the concrete type preserved.
	Copy() (C, error)

	// Matches is Equals against the concrete type.
	Matches(other C) (bool, error)

	Step() (bool, error)
	Stale() bool
}

// InnerWindow is the contract a layered window requires from the window it wraps.
type InnerWindow[C any] interface {
	Push(chunk []byte) error
	Begin() (C, error)
	End() (C, error)
	Shift(to C) ([][]byte, error)
	Dispose() ([][]byte, error)

	// Version changes on every push, shift and dispose.
	Version() uint64
	Disposed() bool
}

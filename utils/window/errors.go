package window

import "errors"

// Invalid input
var (
	// ErrNilChunk indicates that a nil chunk was pushed. Empty non-nil chunks are accepted.
	ErrNilChunk = errors.New("nil chunk")

	// ErrUnsupportedWidth indicates a scalar read or code unit width other than 1, 2 or 4 bytes.
	ErrUnsupportedWidth = errors.New("unsupported scalar width")

	// ErrMalformed indicates that visible data does not form a valid code point.
	ErrMalformed = errors.New("malformed code point")

	// ErrForeignCursor indicates that a cursor was passed to a window it does not belong to.
	ErrForeignCursor = errors.New("cursor belongs to another window")
)

// Protocol violations
var (
	// ErrStaleCursor indicates that the cursor's position was popped since its creation.
	ErrStaleCursor = errors.New("cursor position popped since creation")

	// ErrDisposed indicates an operation on a window that has already been disposed.
	ErrDisposed = errors.New("window disposed")
)

// ErrEnd is returned by Value and Next when the cursor is at the end of the
// window. More data may still arrive; it is not a failure.
var ErrEnd = errors.New("cursor at end of window")

// ErrInvariant is the panic value (wrapped) raised when a layer cannot decode a
// position its own trimming certified as complete.
var ErrInvariant = errors.New("window invariant violated")

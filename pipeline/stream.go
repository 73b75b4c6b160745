package pipeline

import (
	"errors"
	"io"

	"github.com/rony4d/go-textwindow/utils/window"
)

// A Stream is able to provide a source of atomic data values.
type Stream[T any] interface {
	Next() (T, error)
}

type cursorStream[T any] struct {
	cursor window.Cursor[T]
}

// FromWindow returns a Stream[T] that reads forward from c. The stream
// returns io.EOF at the current end of the window; once more data is pushed
// the same stream continues where it stopped.
func FromWindow[T any](c window.Cursor[T]) Stream[T] {
	return &cursorStream[T]{
		cursor: c,
	}
}

func (s *cursorStream[T]) Next() (T, error) {
	v, err := s.cursor.Next()
	if errors.Is(err, window.ErrEnd) {
		return v, io.EOF
	}
	return v, err
}

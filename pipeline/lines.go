package pipeline

import (
	"errors"

	"github.com/rony4d/go-textwindow/utils/chardec"
	"github.com/rony4d/go-textwindow/utils/fast"
)

const (
	backspace = 0x08
	del       = 0x7F
)

// LineReader assembles lines from a byte stream the way a terminal line
// discipline does: '\n' completes a line (a preceding '\r' is dropped), and
// BS or DEL erases the previous character when it is a single byte.
type LineReader struct {
	dec  *chardec.CharDecoder
	emit func(line string) error
}

// NewLineReader calls emit with every completed line, without its terminator.
func NewLineReader(emit func(line string) error) *LineReader {
	return &LineReader{
		dec:  chardec.New(),
		emit: emit,
	}
}

// Feed consumes chunk. A line may span any number of chunks, and so may a
// multi-byte character.
func (l *LineReader) Feed(chunk []byte) error {
	r := fast.NewReader(chunk)
	for !r.Empty() {
		if err := l.feedByte(r.ReadByte()); err != nil {
			return err
		}
	}
	return nil
}

func (l *LineReader) feedByte(b byte) error {
	switch b {
	case '\n':
		if last, ok := l.dec.Peek(); ok && last == '\r' && l.dec.Complete() {
			if _, err := l.dec.Pop(); err != nil {
				return err
			}
		}
		return l.flush()
	case backspace, del:
		_, err := l.dec.Pop()
		if errors.Is(err, chardec.ErrEmpty) || errors.Is(err, chardec.ErrNotSingleByte) {
			return nil
		}
		return err
	default:
		return l.dec.Push(b)
	}
}

func (l *LineReader) flush() error {
	line, err := l.dec.Text()
	if err != nil {
		return err
	}
	if err := l.dec.Clear(); err != nil {
		return err
	}
	return l.emit(line)
}

// Pending returns the number of characters in the unterminated line.
func (l *LineReader) Pending() int {
	return l.dec.Len()
}

// Close emits a final unterminated line, if any.
func (l *LineReader) Close() error {
	if !l.dec.Complete() {
		return chardec.ErrIncomplete
	}
	if l.dec.Len() == 0 {
		return nil
	}
	return l.flush()
}

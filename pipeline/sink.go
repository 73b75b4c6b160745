package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/go-textwindow/utils/utf"
)

// Sink receives what a Decoder produces from every window pass: the decoded
// code points and the raw byte groups shifted out of the window for them.
type Sink interface {
	Emit(runes []rune, raw [][]byte) error
	Close() error
}

type bufferedSink struct {
	w *bufio.Writer
}

func (s bufferedSink) Close() error {
	return s.w.Flush()
}

// TextSink writes the decoded text as UTF-8.
type TextSink struct {
	bufferedSink
	scratch []byte
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{bufferedSink: bufferedSink{bufio.NewWriter(w)}}
}

func (s *TextSink) Emit(runes []rune, _ [][]byte) error {
	s.scratch = s.scratch[:0]
	for _, r := range runes {
		s.scratch = utf8.AppendRune(s.scratch, r)
	}
	_, err := s.w.Write(s.scratch)
	return err
}

// CodePointSink writes one "U+XXXX" line per code point.
type CodePointSink struct {
	bufferedSink
}

func NewCodePointSink(w io.Writer) *CodePointSink {
	return &CodePointSink{bufferedSink{bufio.NewWriter(w)}}
}

func (s *CodePointSink) Emit(runes []rune, _ [][]byte) error {
	for _, r := range runes {
		if _, err := fmt.Fprintf(s.w, "U+%04X\n", r); err != nil {
			return err
		}
	}
	return nil
}

// HexSink writes every evicted byte group as a 0x-prefixed hex line. The
// grouping follows the chunk boundaries of the input.
type HexSink struct {
	bufferedSink
}

func NewHexSink(w io.Writer) *HexSink {
	return &HexSink{bufferedSink{bufio.NewWriter(w)}}
}

func (s *HexSink) Emit(_ []rune, raw [][]byte) error {
	for _, group := range raw {
		if _, err := fmt.Fprintln(s.w, hexutil.Encode(group)); err != nil {
			return err
		}
	}
	return nil
}

// TranscodeSink re-encodes the decoded text in another format.
type TranscodeSink struct {
	bufferedSink
	format       utf.Format
	littleEndian bool
	bom          bool
}

// NewTranscodeSink writes to w in format f. When bom is set the output starts
// with a byte-order mark.
func NewTranscodeSink(w io.Writer, f utf.Format, littleEndian, bom bool) *TranscodeSink {
	return &TranscodeSink{
		bufferedSink: bufferedSink{bufio.NewWriter(w)},
		format:       f,
		littleEndian: littleEndian,
		bom:          bom,
	}
}

func (s *TranscodeSink) Emit(runes []rune, _ [][]byte) error {
	out := utf.Encode(s.format, runes, s.littleEndian, s.bom)
	s.bom = false
	_, err := s.w.Write(out)
	return err
}

// LineSink numbers the lines of the decoded text after applying
// backspace/delete editing.
type LineSink struct {
	bufferedSink
	lines   *LineReader
	n       int
	scratch []byte
}

func NewLineSink(w io.Writer) *LineSink {
	s := &LineSink{bufferedSink: bufferedSink{bufio.NewWriter(w)}}
	s.lines = NewLineReader(func(line string) error {
		s.n++
		_, err := fmt.Fprintf(s.w, "%6d\t%s\n", s.n, line)
		return err
	})
	return s
}

func (s *LineSink) Emit(runes []rune, _ [][]byte) error {
	s.scratch = s.scratch[:0]
	for _, r := range runes {
		s.scratch = utf8.AppendRune(s.scratch, r)
	}
	return s.lines.Feed(s.scratch)
}

// Close writes the last unterminated line and flushes. Lines completed before
// a failure are flushed as well.
func (s *LineSink) Close() error {
	return errors.Join(s.lines.Close(), s.bufferedSink.Close())
}

// NewSink builds the sink for an output format name: text, codepoints, hex,
// lines, or the name of an encoding preset to transcode to.
func NewSink(w io.Writer, format string) (Sink, error) {
	switch format {
	case "", "text":
		return NewTextSink(w), nil
	case "codepoints":
		return NewCodePointSink(w), nil
	case "hex":
		return NewHexSink(w), nil
	case "lines":
		return NewLineSink(w), nil
	}
	enc, err := utf.ParseEncoding(format)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return NewTranscodeSink(w, enc.Format, enc.LittleEndian, enc.BOM), nil
}

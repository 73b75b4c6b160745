// Package pipeline drives a code point window from a chunk source: it pushes
// every chunk, hands the code points that became complete to a Sink, and
// shifts them out so the window only ever holds an incomplete tail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-textwindow/utils/source"
	"github.com/rony4d/go-textwindow/utils/utf"
	"github.com/rony4d/go-textwindow/utils/window"
)

// ErrTruncatedInput indicates that the input ended inside a code point.
var ErrTruncatedInput = errors.New("input ends inside a code point")

// Config selects the decoded encoding.
type Config struct {
	Format  utf.Format
	Options utf.Options

	// Replace substitutes U+FFFD for malformed or truncated input instead of
	// failing.
	Replace bool
}

// Decoder feeds chunks into a code point window and drains it after every push.
type Decoder struct {
	cfg     Config
	window  *utf.CodePointWindow
	sink    Sink
	log     logrus.FieldLogger
	metrics *Metrics
}

// NewDecoder creates a decoder writing to sink. A nil metrics collects into a
// private registry.
func NewDecoder(cfg Config, sink Sink, log logrus.FieldLogger, metrics *Metrics) (*Decoder, error) {
	w, err := utf.NewWindow(cfg.Format, cfg.Options)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry(), "textwindow")
	}
	return &Decoder{
		cfg:     cfg,
		window:  w,
		sink:    sink,
		log:     log.WithField("encoding", cfg.Format.Name()),
		metrics: metrics,
	}, nil
}

// Window exposes the decoder's window.
func (d *Decoder) Window() *utf.CodePointWindow {
	return d.window
}

// Push feeds one chunk and emits every code point it completes.
func (d *Decoder) Push(chunk []byte) error {
	if err := d.window.Push(chunk); err != nil {
		return err
	}
	d.metrics.pushed(len(chunk))
	d.log.WithField("size", len(chunk)).Trace("chunk pushed")
	return d.drain()
}

func (d *Decoder) drain() error {
	c, err := d.window.Begin()
	if err != nil {
		return err
	}

	var runes []rune
	stream := FromWindow[rune](c)
	for {
		r, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, window.ErrMalformed) {
			d.metrics.failed(d.cfg.Format.Name(), "malformed")
			if !d.cfg.Replace {
				return fmt.Errorf("byte %d: %w", offsetOf(c), err)
			}
			d.log.WithError(err).WithField("offset", offsetOf(c)).Debug("replacing malformed input")
			runes = append(runes, utf8.RuneError)
			if _, err := c.StepInner(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		runes = append(runes, r)
	}

	raw, err := d.window.Shift(c)
	if err != nil {
		return err
	}
	n := total(raw)
	if n == 0 {
		return nil
	}
	d.metrics.evicted(n)
	d.metrics.decoded(d.cfg.Format.Name(), len(runes))
	d.log.WithFields(logrus.Fields{
		"codepoints": len(runes),
		"evicted":    n,
	}).Trace("window shifted")
	return d.sink.Emit(runes, raw)
}

// Close disposes of the window and closes the sink. Bytes left in the window
// form an incomplete code point.
func (d *Decoder) Close() error {
	rest, err := d.window.Dispose()
	if err != nil {
		return err
	}
	if n := total(rest); n > 0 {
		d.metrics.failed(d.cfg.Format.Name(), "truncated")
		if !d.cfg.Replace {
			d.sink.Close()
			return fmt.Errorf("%w: %d trailing bytes", ErrTruncatedInput, n)
		}
		d.log.WithField("bytes", n).Debug("replacing truncated input")
		if err := d.sink.Emit([]rune{utf8.RuneError}, rest); err != nil {
			return err
		}
	}
	return d.sink.Close()
}

// Run consumes src until it ends, then closes the decoder.
func (d *Decoder) Run(ctx context.Context, src *source.Source) error {
	if err := d.consume(ctx, src); err != nil {
		d.sink.Close()
		return err
	}
	return d.Close()
}

func (d *Decoder) consume(ctx context.Context, src *source.Source) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-src.Chunks():
			if !ok {
				return src.Err()
			}
			if err := d.Push(chunk); err != nil {
				return err
			}
		}
	}
}

func offsetOf(c *utf.PointCursor) int64 {
	units, err := c.Unwrap()
	if err != nil {
		return -1
	}
	raw, err := units.Unwrap()
	if err != nil {
		return -1
	}
	return raw.Offset()
}

func total(groups [][]byte) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

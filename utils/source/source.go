// Package source produces the byte chunks that feed a decoding window.
//
// A Source runs its producer in a goroutine and delivers chunks over a
// channel. The channel closes when the input ends, the context is cancelled or
// reading fails; Err then reports why.
package source

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
)

// DefaultChunkSize is used when a non-positive chunk size is requested.
const DefaultChunkSize = 4096

// Source is a running chunk producer.
type Source struct {
	chunks chan []byte
	done   chan struct{}
	err    error
}

func newSource() *Source {
	return &Source{
		chunks: make(chan []byte),
		done:   make(chan struct{}),
	}
}

// Chunks returns the chunk channel. Every chunk is freshly allocated and
// never written again, so it can be pushed into a window as is.
func (s *Source) Chunks() <-chan []byte {
	return s.chunks
}

// Err blocks until the producer has stopped and returns nil for a clean end
// of input.
func (s *Source) Err() error {
	<-s.done
	return s.err
}

func (s *Source) finish(err error) {
	s.err = err
	close(s.chunks)
	close(s.done)
}

func (s *Source) send(ctx context.Context, chunk []byte) error {
	select {
	case s.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain reads r until it reports io.EOF.
func (s *Source) drain(ctx context.Context, r io.Reader, chunkSize int) error {
	for {
		buf := make([]byte, chunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			if err := s.send(ctx, buf[:n:n]); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// FromReader streams r in chunks of at most chunkSize bytes until io.EOF.
func FromReader(ctx context.Context, r io.Reader, chunkSize int) *Source {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	s := newSource()
	go func() {
		s.finish(s.drain(ctx, r, chunkSize))
	}()
	return s
}

// Follow streams the file at path, then keeps streaming whatever is appended
// to it until ctx is cancelled or the file is removed or renamed.
func Follow(ctx context.Context, path string, chunkSize int) (*Source, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	// watch before the first read so no append goes unnoticed
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return nil, err
	}

	s := newSource()
	go func() {
		defer f.Close()
		defer watcher.Close()
		s.finish(s.follow(ctx, f, watcher, chunkSize))
	}()
	return s, nil
}

func (s *Source) follow(ctx context.Context, f *os.File, watcher *fsnotify.Watcher, chunkSize int) error {
	if err := s.drain(ctx, f, chunkSize); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := s.drain(ctx, f, chunkSize); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

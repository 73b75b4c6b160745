package fast

// buffer.go provides lightweight, non-thread-safe byte accumulators used on the
// hot paths of the decoding windows.
//
// Purpose:
//   - Writer is an append-only buffer that can also give back bytes from its tail.
//     The character decoder keeps its pending bytes in one, and the byte window
//     uses a fixed-capacity one as scratch space when a scalar straddles chunks.
//   - Reader walks a single chunk byte-by-byte without bounds errors.
//
// Neither type checks its preconditions with errors: reading past the end or
// truncating more than was written panics with a runtime bounds error, which is
// the caller's responsibility to avoid.

type Reader struct {
	// buf is the chunk being consumed.
	buf []byte
	// offset tracks the current reading position.
	offset int
}

type Writer struct {
	// buf is the accumulating byte slice.
	buf []byte
}

// NewReader creates a Reader to consume the provided byte slice.
func NewReader(bb []byte) *Reader {
	return &Reader{
		buf: bb,
	}
}

// NewWriter creates a Writer that appends to the provided initial slice.
// Called with `make([]byte, 0, capacity)` when the final size is known.
func NewWriter(bb []byte) *Writer {
	return &Writer{
		buf: bb,
	}
}

// WriteByte appends a single byte to the buffer.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends a slice of bytes to the buffer.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Len returns the number of bytes written and not yet truncated.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Last returns the most recently written byte.
// The second result is false when the buffer is empty.
func (b *Writer) Last() (byte, bool) {
	if len(b.buf) == 0 {
		return 0, false
	}
	return b.buf[len(b.buf)-1], true
}

// Truncate drops the last n bytes.
//
// WARNING: panics if n is larger than Len().
func (b *Writer) Truncate(n int) {
	b.buf = b.buf[:len(b.buf)-n]
}

// Reset empties the buffer but keeps its capacity for reuse.
func (b *Writer) Reset() {
	b.buf = b.buf[:0]
}

// Bytes returns the accumulated content of the Writer.
// The result shares memory with the Writer until the next write.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// ReadByte consumes and returns a single byte.
// WARNING: Panics if the reader is empty.
func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Read consumes and returns the next 'n' bytes.
// The result shares memory with the underlying chunk.
func (b *Reader) Read(n int) []byte {
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

// Position returns the current cursor index of the Reader.
func (b *Reader) Position() int {
	return b.offset
}

// Empty reports whether every byte has been consumed.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}

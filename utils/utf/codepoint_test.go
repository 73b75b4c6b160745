package utf

import (
	"bytes"
	"errors"
	"sort"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"pgregory.net/rapid"

	"github.com/rony4d/go-textwindow/utils/window"
)

// drain decodes every visible code point and shifts them out.
func drain(t require.TestingT, w *CodePointWindow) []rune {
	c, err := w.Begin()
	require.NoError(t, err)
	var out []rune
	for {
		r, err := w.Decode(c)
		if errors.Is(err, window.ErrEnd) {
			break
		}
		require.NoError(t, err)
		out = append(out, r)
	}
	_, err = w.Shift(c)
	require.NoError(t, err)
	return out
}

func drawRunes(t *rapid.T) []rune {
	n := rapid.IntRange(0, 24).Draw(t, "n")
	out := make([]rune, n)
	for i := range out {
		r := rapid.Int32Range(0, unicode.MaxRune).Draw(t, "rune")
		if r >= 0xD800 && r <= 0xDFFF {
			r -= 0x800
		}
		out[i] = r
	}
	return out
}

func drawSplit(t *rapid.T, data []byte) [][]byte {
	cuts := rapid.SliceOfN(rapid.IntRange(0, len(data)), 0, 8).Draw(t, "cuts")
	sort.Ints(cuts)
	var out [][]byte
	prev := 0
	for _, c := range cuts {
		out = append(out, data[prev:c])
		prev = c
	}
	return append(out, data[prev:])
}

func TestCodePointWindow_RoundTrip(t *testing.T) {
	for _, f := range []Format{UTF8, UTF16, UTF32} {
		for _, le := range []bool{false, true} {
			f, le := f, le
			name := f.Name() + "/BE"
			if le {
				name = f.Name() + "/LE"
			}
			t.Run(name, func(t *testing.T) {
				rapid.Check(t, func(t *rapid.T) {
					runes := drawRunes(t)
					data := Encode(f, runes, le, false)

					w, err := NewWindow(f, Options{LittleEndian: le})
					require.NoError(t, err)
					var got []rune
					for _, ch := range drawSplit(t, data) {
						require.NoError(t, w.Push(ch))
						got = append(got, drain(t, w)...)
					}
					require.Equal(t, string(runes), string(got))

					rest, err := w.Dispose()
					require.NoError(t, err)
					require.Empty(t, bytes.Join(rest, nil))
				})
			})
		}
	}
}

func TestCodePointWindow_SplitSurrogatePair(t *testing.T) {
	// 'A', then U+1F600 as D83D DE00, little-endian
	stream := []byte{0x41, 0x00, 0x3D, 0xD8, 0x00, 0xDE}

	for cut := 3; cut <= 5; cut++ {
		w := NewUTF16Window(Options{LittleEndian: true})
		require.NoError(t, w.Push(stream[:cut]))

		got, err := w.Collect()
		require.NoError(t, err)
		require.Equal(t, []rune{'A'}, got, "cut %d", cut)

		end, err := w.End()
		require.NoError(t, err)
		inner, err := end.Unwrap()
		require.NoError(t, err)
		raw, err := inner.Unwrap()
		require.NoError(t, err)
		require.Equal(t, int64(2), raw.Offset())

		require.NoError(t, w.Push(stream[cut:]))
		got, err = w.Collect()
		require.NoError(t, err)
		require.Equal(t, []rune{'A', 0x1F600}, got, "cut %d", cut)
	}
}

func TestCodePointWindow_TrimKeepsConsumedData(t *testing.T) {
	require := require.New(t)

	w := NewUTF8Window(Options{})
	require.NoError(w.Push([]byte("a\xC3")))
	require.Equal([]rune{'a'}, drain(t, w))
	require.Equal([]byte{0xC3}, w.Bytes().Bytes())

	require.NoError(w.Push([]byte{0xA9}))
	require.Equal([]rune{'é'}, drain(t, w))
	require.Equal(int64(0), w.Bytes().Len())
}

func TestCodePointWindow_StepBack(t *testing.T) {
	require := require.New(t)

	w := NewUTF8Window(Options{})
	require.NoError(w.Push([]byte("aé")))
	require.NoError(w.Push([]byte("\xF0\x9F")))
	require.NoError(w.Push([]byte("\x98\x80")))

	c, err := w.End()
	require.NoError(err)
	var back []rune
	for {
		ok, err := c.StepBack()
		require.NoError(err)
		if !ok {
			break
		}
		r, err := c.Value()
		require.NoError(err)
		back = append(back, r)
	}
	require.Equal([]rune{0x1F600, 'é', 'a'}, back)

	isBegin, err := c.IsBegin()
	require.NoError(err)
	require.True(isBegin)
}

func TestCodePointWindow_ShiftReturnsRawBytes(t *testing.T) {
	require := require.New(t)

	w := NewUTF16Window(Options{})
	require.NoError(w.Push([]byte{0x00, 0x61}))
	require.NoError(w.Push([]byte{0x00, 0x62, 0x00}))

	begin, err := w.Begin()
	require.NoError(err)
	c, err := begin.Copy()
	require.NoError(err)
	_, err = c.Step()
	require.NoError(err)
	_, err = c.Step()
	require.NoError(err)

	out, err := w.Shift(c)
	require.NoError(err)
	require.Equal([][]byte{{0x00, 0x61}, {0x00, 0x62}}, out)

	require.True(begin.Stale())
	require.False(c.Stale())
	for name, op := range map[string]func() error{
		"Next":            func() error { _, err := begin.Next(); return err },
		"Value":           func() error { _, err := begin.Value(); return err },
		"Step":            func() error { _, err := begin.Step(); return err },
		"StepBack":        func() error { _, err := begin.StepBack(); return err },
		"IsBegin":         func() error { _, err := begin.IsBegin(); return err },
		"IsEnd":           func() error { _, err := begin.IsEnd(); return err },
		"Clone":           func() error { _, err := begin.Clone(); return err },
		"Copy":            func() error { _, err := begin.Copy(); return err },
		"Equals":          func() error { _, err := begin.Equals(c); return err },
		"Equals Argument": func() error { _, err := c.Equals(begin); return err },
		"Shift":           func() error { _, err := w.Shift(begin); return err },
		"Decode":          func() error { _, err := w.Decode(begin); return err },
	} {
		require.ErrorIs(op(), window.ErrStaleCursor, name)
	}

	rest, err := w.Dispose()
	require.NoError(err)
	require.Equal([][]byte{{0x00}}, rest)
	_, err = w.Begin()
	require.ErrorIs(err, window.ErrDisposed)
}

func TestCodePointWindow_BeginIntoRecycles(t *testing.T) {
	require := require.New(t)

	w := NewUTF8Window(Options{})
	require.NoError(w.Push([]byte("ab\xC3")))

	c, err := w.Begin()
	require.NoError(err)
	_, err = c.Step()
	require.NoError(err)
	_, err = w.Shift(c)
	require.NoError(err)

	old, err := w.Begin()
	require.NoError(err)
	_, err = w.ShiftAll()
	require.NoError(err)
	require.True(old.Stale())

	got, err := w.BeginInto(old)
	require.NoError(err)
	require.Same(old, got)
	require.False(got.Stale())

	require.NoError(w.Push([]byte("\xA9")))
	r, err := got.Value()
	require.NoError(err)
	require.Equal('é', r)

	end, err := w.EndInto(c)
	require.NoError(err)
	require.Same(c, end)
	isEnd, err := end.IsEnd()
	require.NoError(err)
	require.True(isEnd)

	fresh, err := w.EndInto(nil)
	require.NoError(err)
	eq, err := fresh.Equals(end)
	require.NoError(err)
	require.True(eq)

	_, err = w.Dispose()
	require.NoError(err)
	_, err = w.BeginInto(got)
	require.ErrorIs(err, window.ErrDisposed)
}

func TestCodePointWindow_Malformed(t *testing.T) {
	for name, tc := range map[string]struct {
		format Format
		data   []byte
		exp    []rune
	}{
		"UTF-8 Stray Continuation":   {UTF8, []byte("\x80ab"), []rune("ab")},
		"UTF-8 Interrupted Sequence": {UTF8, []byte("\xE0A"), []rune("A")},
		"UTF-8 Bad Continuation":     {UTF8, []byte("\xC3(x"), []rune("(x")},
		"UTF-16 Bare Low Surrogate":  {UTF16, []byte{0xDC, 0x00, 0x00, 0x41}, []rune("A")},
		"UTF-16 Unpaired High":       {UTF16, []byte{0xD8, 0x00, 0x00, 0x41}, []rune("A")},
	} {
		t.Run(name, func(t *testing.T) {
			w, err := NewWindow(tc.format, Options{})
			require.NoError(t, err)
			require.NoError(t, w.Push(tc.data))

			c, err := w.Begin()
			require.NoError(t, err)
			_, err = c.Next()
			require.ErrorIs(t, err, window.ErrMalformed)
			isBegin, err := c.IsBegin()
			require.NoError(t, err)
			require.True(t, isBegin)

			// resynchronise one code unit at a time
			var got []rune
			for {
				r, err := c.Next()
				if errors.Is(err, window.ErrEnd) {
					break
				}
				if errors.Is(err, window.ErrMalformed) {
					ok, err := c.StepInner()
					require.NoError(t, err)
					require.True(t, ok)
					continue
				}
				require.NoError(t, err)
				got = append(got, r)
			}
			require.Equal(t, tc.exp, got)
		})
	}
}

func TestCodePointWindow_MalformedTail(t *testing.T) {
	require := require.New(t)

	w := NewUTF8Window(Options{})
	require.NoError(w.Push([]byte("a\x80")))
	got, err := w.Collect()
	require.NoError(err)
	require.Equal([]rune{'a'}, got)

	// a run longer than any sequence can never complete and becomes visible
	require.NoError(w.Push([]byte("\x80\x80\x80")))
	got, err = w.Collect()
	require.ErrorIs(err, window.ErrMalformed)
	require.Equal([]rune{'a'}, got)
}

func TestCodePointWindow_ByteOrderMark(t *testing.T) {
	text := []rune("hé😀")

	for _, f := range []Format{UTF16, UTF32} {
		for _, le := range []bool{false, true} {
			marked := Encode(f, text, le, true)
			plain := Encode(f, text, le, false)

			// the default is deliberately the opposite order
			w, err := NewWindow(f, Options{LittleEndian: !le, DetectBOM: true})
			require.NoError(t, err)
			for _, b := range marked {
				require.NoError(t, w.Push([]byte{b}))
			}
			withBOM, err := w.Collect()
			require.NoError(t, err)

			w, err = NewWindow(f, Options{LittleEndian: le})
			require.NoError(t, err)
			require.NoError(t, w.Push(plain))
			explicit, err := w.Collect()
			require.NoError(t, err)

			require.Equal(t, text, withBOM, "%s le=%v", f.Name(), le)
			require.Equal(t, explicit, withBOM, "%s le=%v", f.Name(), le)

			w, err = NewWindow(f, Options{LittleEndian: le, DetectBOM: true})
			require.NoError(t, err)
			require.NoError(t, w.Push(plain))
			fallback, err := w.Collect()
			require.NoError(t, err)
			require.Equal(t, text, fallback, "%s le=%v", f.Name(), le)
		}
	}

	t.Run("UTF-8", func(t *testing.T) {
		marked := Encode(UTF8, text, false, true)

		w := NewUTF8Window(Options{DetectBOM: true})
		require.NoError(t, w.Push(marked[:1]))
		require.NoError(t, w.Push(marked[1:]))
		got, err := w.Collect()
		require.NoError(t, err)
		require.Equal(t, text, got)

		w = NewUTF8Window(Options{})
		require.NoError(t, w.Push(marked))
		got, err = w.Collect()
		require.NoError(t, err)
		require.Equal(t, append([]rune{ByteOrderMark}, text...), got)
	})
}

func TestCodePointWindow_MatchesReferenceEncoders(t *testing.T) {
	text := "plain ascii, ünïcödé, 日本語, 😀🚀"

	for name, tc := range map[string]struct {
		encode func([]byte) ([]byte, error)
		format Format
		le     bool
	}{
		"UTF-16LE": {xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewEncoder().Bytes, UTF16, true},
		"UTF-16BE": {xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewEncoder().Bytes, UTF16, false},
		"UTF-32LE": {utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewEncoder().Bytes, UTF32, true},
		"UTF-32BE": {utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewEncoder().Bytes, UTF32, false},
	} {
		t.Run(name, func(t *testing.T) {
			ref, err := tc.encode([]byte(text))
			require.NoError(t, err)
			require.Equal(t, ref, Encode(tc.format, []rune(text), tc.le, false))

			w, err := NewWindow(tc.format, Options{LittleEndian: tc.le})
			require.NoError(t, err)
			for i := 0; i < len(ref); i += 3 {
				require.NoError(t, w.Push(ref[i:min(i+3, len(ref))]))
			}
			got, err := w.Collect()
			require.NoError(t, err)
			require.Equal(t, text, string(got))
		})
	}

	t.Run("UTF-16 With BOM", func(t *testing.T) {
		ref, err := xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewEncoder().Bytes([]byte(text))
		require.NoError(t, err)
		w := NewUTF16Window(Options{LittleEndian: true, DetectBOM: true})
		require.NoError(t, w.Push(ref))
		got, err := w.Collect()
		require.NoError(t, err)
		require.Equal(t, text, string(got))
	})
}

func TestFormatByName(t *testing.T) {
	for name, exp := range map[string]Format{"utf8": UTF8, "UTF-16": UTF16, "utf-32": UTF32} {
		f, err := FormatByName(name)
		require.NoError(t, err)
		require.Equal(t, exp, f)
	}
	_, err := FormatByName("latin1")
	require.Error(t, err)
}

func BenchmarkCodePointWindow_Decode(b *testing.B) {
	data := Encode(UTF8, []rune(string(bytes.Repeat([]byte("héllo wörld 😀 "), 256))), false, false)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := NewUTF8Window(Options{})
		for off := 0; off < len(data); off += 512 {
			_ = w.Push(data[off:min(off+512, len(data))])
			c, _ := w.Begin()
			for {
				if _, err := c.Next(); err != nil {
					break
				}
			}
			_, _ = w.Shift(c)
		}
	}
}

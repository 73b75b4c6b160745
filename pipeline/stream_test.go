package pipeline

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-textwindow/utils/utf"
	"github.com/rony4d/go-textwindow/utils/window"
)

func TestFromWindow(t *testing.T) {
	require := require.New(t)

	w := window.New[byte]()
	require.NoError(w.Push([]byte("ab")))
	c, err := w.Begin()
	require.NoError(err)

	s := FromWindow[byte](c)
	for _, exp := range []byte("ab") {
		b, err := s.Next()
		require.NoError(err)
		require.Equal(exp, b)
	}
	_, err = s.Next()
	require.ErrorIs(err, io.EOF)

	require.NoError(w.Push([]byte("c")))
	b, err := s.Next()
	require.NoError(err)
	require.Equal(byte('c'), b)
}

func TestFromWindow_CodePoints(t *testing.T) {
	require := require.New(t)

	w := utf.NewUTF16Window(utf.Options{LittleEndian: true})
	require.NoError(w.Push(utf.Encode(utf.UTF16, []rune("z😀"), true, false)))
	c, err := w.Begin()
	require.NoError(err)

	s := FromWindow[rune](c)
	var got []rune
	for {
		r, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(err)
		got = append(got, r)
	}
	require.Equal([]rune("z😀"), got)
}

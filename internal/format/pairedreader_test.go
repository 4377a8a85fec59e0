package format

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// shortReader returns at most n bytes per Read call, to exercise the
// paired reader's short-read tolerance.
type shortReader struct {
	data []byte
	n    int
}

func (r *shortReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestReadPairedConcatenation(t *testing.T) {
	a := bytes.Repeat([]byte{0xAA}, 5000)
	for i := range a {
		a[i] = byte(i)
	}
	b := make([]byte, len(a))
	for i := range b {
		b[i] = byte(255 - i)
	}

	r0 := &shortReader{data: append([]byte(nil), a...), n: 7}
	r1 := &shortReader{data: append([]byte(nil), b...), n: 3}

	var gotA, gotB []byte
	err := ReadPaired(uint64(len(a)), r0, r1, func(x, y []byte) error {
		require.Equal(t, len(x), len(y))
		gotA = append(gotA, x...)
		gotB = append(gotB, y...)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, a, gotA)
	require.Equal(t, b, gotB)
}

func TestReadPairedUnexpectedEOF(t *testing.T) {
	r0 := bytes.NewReader([]byte("short"))
	r1 := bytes.NewReader(bytes.Repeat([]byte{0}, 100))

	err := ReadPaired(100, r0, r1, func(a, b []byte) error { return nil })
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadIntoConcatenation(t *testing.T) {
	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i)
	}
	r := &shortReader{data: append([]byte(nil), data...), n: 11}

	var got []byte
	err := ReadInto(uint64(len(data)), r, func(b []byte) error {
		got = append(got, b...)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, data, got)
}

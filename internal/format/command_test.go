package format

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuawarner32/rsdiff/internal/offset"
	"github.com/joshuawarner32/rsdiff/internal/patcherr"
)

func TestCommandRoundTrip(t *testing.T) {
	cmds := []Command{
		{BytewiseAddSize: 1, ExtraAppendSize: 2, OldfileSeekOffset: 3},
		{BytewiseAddSize: 4, ExtraAppendSize: 5, OldfileSeekOffset: 6},
		{BytewiseAddSize: 7, ExtraAppendSize: 8, OldfileSeekOffset: -9},
	}

	var buf bytes.Buffer
	w := NewCommandWriter(&buf)
	for _, c := range cmds {
		require.NoError(t, w.Write(c))
	}

	r := NewCommandReader(&buf)
	var got []Command
	for {
		c, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}

	require.Equal(t, cmds, got)
}

func TestCommandShortReadIsTruncated(t *testing.T) {
	var buf [CommandSize]byte
	Command{BytewiseAddSize: 1}.WriteTo(buf[:])

	r := NewCommandReader(bytes.NewReader(buf[:CommandSize-12]))
	_, err := r.Next()
	require.ErrorIs(t, err, patcherr.Truncated)
}

func TestCommandCleanEOF(t *testing.T) {
	r := NewCommandReader(bytes.NewReader(nil))
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestCommandNegativeSizeIsInvalidHeader(t *testing.T) {
	var buf [CommandSize]byte
	offset.Write(buf[0:8], -1)
	offset.Write(buf[8:16], 0)
	offset.Write(buf[16:24], 0)

	r := NewCommandReader(bytes.NewReader(buf[:]))
	_, err := r.Next()
	require.ErrorIs(t, err, patcherr.InvalidHeader)
}

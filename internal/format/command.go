package format

import (
	"fmt"
	"io"

	"github.com/joshuawarner32/rsdiff/internal/offset"
	"github.com/joshuawarner32/rsdiff/internal/patcherr"
)

// CommandSize is the encoded size of a Command, in bytes.
const CommandSize = 3 * offset.Size

// Command is one (add, append, seek) triple driving the applier, per
// spec §3.
type Command struct {
	BytewiseAddSize   uint64
	ExtraAppendSize   uint64
	OldfileSeekOffset int64
}

// WriteTo encodes c into buf, which must be at least CommandSize bytes.
func (c Command) WriteTo(buf []byte) {
	offset.Write(buf[0:8], int64(c.BytewiseAddSize))
	offset.Write(buf[8:16], int64(c.ExtraAppendSize))
	offset.Write(buf[16:24], c.OldfileSeekOffset)
}

// CommandWriter serializes a sequence of commands to an underlying writer.
type CommandWriter struct {
	w io.Writer
}

// NewCommandWriter wraps w.
func NewCommandWriter(w io.Writer) *CommandWriter {
	return &CommandWriter{w: w}
}

// Write encodes and writes a single command.
func (cw *CommandWriter) Write(c Command) error {
	var buf [CommandSize]byte
	c.WriteTo(buf[:])
	_, err := cw.w.Write(buf[:])
	return err
}

// CommandReader deserializes a sequence of commands from an underlying
// reader. A clean zero-byte read at a CommandSize boundary terminates
// iteration (Next returns io.EOF); a short read at a non-zero offset is
// Truncated.
type CommandReader struct {
	r io.Reader
}

// NewCommandReader wraps r.
func NewCommandReader(r io.Reader) *CommandReader {
	return &CommandReader{r: r}
}

// Next reads the next command, returning io.EOF when the stream is cleanly
// exhausted at a record boundary.
func (cr *CommandReader) Next() (Command, error) {
	var buf [CommandSize]byte

	p := 0
	for p < len(buf) {
		n, err := cr.r.Read(buf[p:])
		p += n
		if err != nil {
			if err == io.EOF {
				if p == 0 {
					return Command{}, io.EOF
				}
				return Command{}, fmt.Errorf("format: short command read (%d of %d bytes): %w", p, len(buf), patcherr.Truncated)
			}
			return Command{}, err
		}
	}

	addSize := offset.Read(buf[0:8])
	extraSize := offset.Read(buf[8:16])
	if addSize < 0 || extraSize < 0 {
		return Command{}, fmt.Errorf("format: negative command size (add=%d extra=%d): %w", addSize, extraSize, patcherr.InvalidHeader)
	}

	return Command{
		BytewiseAddSize:   uint64(addSize),
		ExtraAppendSize:   uint64(extraSize),
		OldfileSeekOffset: offset.Read(buf[16:24]),
	}, nil
}

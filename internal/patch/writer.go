// Package patch implements the patch writer (C6) and patch reader/applier
// (C7): serialization of the three interleaved bzip2-compressed streams
// (commands, delta, extra) with the fixed BSDIFF40 header, and the
// streaming decoder that reconstructs new from old + patch.
package patch

import (
	"bytes"
	"fmt"

	"github.com/dsnet/compress/bzip2"

	"github.com/joshuawarner32/rsdiff/internal/format"
	"github.com/joshuawarner32/rsdiff/internal/index"
	"github.com/joshuawarner32/rsdiff/internal/match"
)

// writer incrementally builds the three compressed regions of a patch and
// assembles the final header-prefixed buffer in finish.
type writer struct {
	newFileSize int

	cmdsBuf, deltaBuf, extraBuf bytes.Buffer
	cmds, delta, extra          *bzip2.Writer
	cmdWriter                   *format.CommandWriter
}

func newWriter(newFileSize int) (*writer, error) {
	w := &writer{newFileSize: newFileSize}

	var err error
	if w.cmds, err = bzip2.NewWriterLevel(&w.cmdsBuf, bzip2.BestCompression); err != nil {
		return nil, err
	}
	if w.delta, err = bzip2.NewWriterLevel(&w.deltaBuf, bzip2.BestCompression); err != nil {
		return nil, err
	}
	if w.extra, err = bzip2.NewWriterLevel(&w.extraBuf, bzip2.BestCompression); err != nil {
		return nil, err
	}
	w.cmdWriter = format.NewCommandWriter(w.cmds)

	return w, nil
}

func (w *writer) writeCommand(c format.Command) error {
	return w.cmdWriter.Write(c)
}

func (w *writer) writeDeltaZeros(count int) error {
	if count <= 0 {
		return nil
	}
	zeros := make([]byte, count)
	_, err := w.delta.Write(zeros)
	return err
}

// writeDelta writes new[i]-old[i] (wrapping, per byte) to the delta stream.
// old and new must be the same length; a mismatch is a programmer error,
// not a data error, and panics per spec §7.
func (w *writer) writeDelta(old, newBytes []byte) error {
	if len(old) != len(newBytes) {
		panic(fmt.Sprintf("patch: writeDelta length mismatch: old=%d new=%d", len(old), len(newBytes)))
	}
	if len(old) == 0 {
		return nil
	}
	buf := make([]byte, len(old))
	for i := range buf {
		buf[i] = newBytes[i] - old[i]
	}
	_, err := w.delta.Write(buf)
	return err
}

func (w *writer) writeExtra(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.extra.Write(b)
	return err
}

func (w *writer) finish() ([]byte, error) {
	if err := w.cmds.Close(); err != nil {
		return nil, err
	}
	if err := w.delta.Close(); err != nil {
		return nil, err
	}
	if err := w.extra.Close(); err != nil {
		return nil, err
	}

	header := format.Header{
		CompressedCommandsSize: uint64(w.cmdsBuf.Len()),
		CompressedDeltaSize:    uint64(w.deltaBuf.Len()),
		NewFileSize:            uint64(w.newFileSize),
	}

	out := make([]byte, 0, format.HeaderSize+w.cmdsBuf.Len()+w.deltaBuf.Len()+w.extraBuf.Len())
	out = append(out, header.Bytes()...)
	out = append(out, w.cmdsBuf.Bytes()...)
	out = append(out, w.deltaBuf.Bytes()...)
	out = append(out, w.extraBuf.Bytes()...)

	return out, nil
}

// GenerateIdentityPatch produces a patch that, applied to any size-byte
// input, yields that input unchanged.
func GenerateIdentityPatch(size uint64) ([]byte, error) {
	w, err := newWriter(int(size))
	if err != nil {
		return nil, err
	}

	if err := w.writeDeltaZeros(int(size)); err != nil {
		return nil, err
	}
	if err := w.writeCommand(format.Command{BytewiseAddSize: size}); err != nil {
		return nil, err
	}

	return w.finish()
}

// GenerateIdempotentPatch produces a patch that, applied to any input,
// yields desiredOutput.
func GenerateIdempotentPatch(desiredOutput []byte) ([]byte, error) {
	w, err := newWriter(len(desiredOutput))
	if err != nil {
		return nil, err
	}

	if err := w.writeExtra(desiredOutput); err != nil {
		return nil, err
	}
	if err := w.writeCommand(format.Command{ExtraAppendSize: uint64(len(desiredOutput))}); err != nil {
		return nil, err
	}

	return w.finish()
}

// GenerateFullPatch produces a patch transforming old.Data into newBytes,
// driven by the match iterator over the suffix index old.
func GenerateFullPatch(old *index.Index, newBytes []byte) ([]byte, error) {
	w, err := newWriter(len(newBytes))
	if err != nil {
		return nil, err
	}

	matches := match.All(old, newBytes)

	// The applier starts reading old at offset 0, so a first window that
	// begins elsewhere needs a leading seek-only command.
	if len(matches) > 0 && matches[0].Matched.OldOffset != 0 {
		if err := w.writeCommand(format.Command{OldfileSeekOffset: int64(matches[0].Matched.OldOffset)}); err != nil {
			return nil, err
		}
	}

	i := 0
	for k, m := range matches {
		mm := m.Matched

		var nextOldOffset int
		if k+1 < len(matches) {
			nextOldOffset = matches[k+1].Matched.OldOffset
		} else {
			nextOldOffset = mm.OldOffset + mm.Len()
		}

		if err := w.writeCommand(format.Command{
			BytewiseAddSize:   uint64(mm.Len()),
			ExtraAppendSize:   uint64(m.UnmatchedSuffix),
			OldfileSeekOffset: int64(nextOldOffset) - int64(mm.OldOffset+mm.Len()),
		}); err != nil {
			return nil, err
		}

		lowerStart, lowerEnd := mm.LowerDeltaRange()
		if err := w.writeDelta(old.Data[lowerStart:lowerEnd], newBytes[i:i+mm.LowerDeltaLen]); err != nil {
			return nil, err
		}

		if err := w.writeDeltaZeros(mm.MidExactLen); err != nil {
			return nil, err
		}

		upperStart, upperEnd := mm.UpperDeltaRange()
		upperNewStart := i + mm.LowerDeltaLen + mm.MidExactLen
		if err := w.writeDelta(old.Data[upperStart:upperEnd], newBytes[upperNewStart:upperNewStart+mm.UpperDeltaLen]); err != nil {
			return nil, err
		}

		extraBegin := i + mm.Len()
		extraEnd := extraBegin + m.UnmatchedSuffix
		if err := w.writeExtra(newBytes[extraBegin:extraEnd]); err != nil {
			return nil, err
		}

		i = extraEnd
	}

	return w.finish()
}

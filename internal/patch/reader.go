package patch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/joshuawarner32/rsdiff/internal/format"
	"github.com/joshuawarner32/rsdiff/internal/patcherr"
)

// Apply reconstructs new from old and a BSDIFF40 patch. old is read by
// seeking, not loaded whole; new is written as it's produced. Only the
// compressed patch sections and the two 1 KiB paired-read buffers inside
// ApplyRaw are held in memory at once, per spec §5.
func Apply(patchBytes []byte, old io.ReadSeeker, new io.Writer) error {
	header, err := format.ReadHeader(patchBytes)
	if err != nil {
		return err
	}

	body := patchBytes[format.HeaderSize:]
	if uint64(len(body)) < header.CompressedCommandsSize {
		return fmt.Errorf("patch: commands section runs past end of patch: %w", patcherr.Truncated)
	}
	cmdsSection := body[:header.CompressedCommandsSize]
	rest := body[header.CompressedCommandsSize:]

	if uint64(len(rest)) < header.CompressedDeltaSize {
		return fmt.Errorf("patch: delta section runs past end of patch: %w", patcherr.Truncated)
	}
	deltaSection := rest[:header.CompressedDeltaSize]
	extraSection := rest[header.CompressedDeltaSize:]

	cmdsR, err := bzip2.NewReader(bytes.NewReader(cmdsSection), nil)
	if err != nil {
		return fmt.Errorf("patch: opening commands stream: %w: %v", patcherr.DecompressionFailure, err)
	}
	deltaR, err := bzip2.NewReader(bytes.NewReader(deltaSection), nil)
	if err != nil {
		return fmt.Errorf("patch: opening delta stream: %w: %v", patcherr.DecompressionFailure, err)
	}
	extraR, err := bzip2.NewReader(bytes.NewReader(extraSection), nil)
	if err != nil {
		return fmt.Errorf("patch: opening extra stream: %w: %v", patcherr.DecompressionFailure, err)
	}

	return ApplyRaw(old, int64(header.NewFileSize), format.NewCommandReader(cmdsR), deltaR, extraR, new)
}

// ApplyRaw is the codec-agnostic command-loop core (spec §3, supplemented
// apply_raw): it drives cmds against old, folding delta and copying extra,
// independent of how those two streams happen to be compressed. Apply
// wraps this with the three bzip2 streams; a caller with pre-decompressed
// streams (e.g. a test fixture) can call it directly.
//
// old is driven by seeking to each command's absolute offset and reading
// forward; new is written to incrementally. Neither is ever materialized
// in full — the largest buffers this function holds are the two
// pairedBufSize windows inside format.ReadPaired/ReadInto.
func ApplyRaw(old io.ReadSeeker, newSize int64, cmds *format.CommandReader, delta, extra io.Reader, new io.Writer) error {
	var oldPos, written int64

	for {
		cmd, err := cmds.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("patch: reading command: %w", err)
		}

		addLen := int64(cmd.BytewiseAddSize)
		if _, err := old.Seek(oldPos, io.SeekStart); err != nil {
			return fmt.Errorf("patch: seeking old to %d: %w", oldPos, wrapStreamErr(err))
		}

		err = format.ReadPaired(uint64(addLen), io.LimitReader(old, addLen), delta, func(a, b []byte) error {
			buf := make([]byte, len(a))
			for i := range a {
				buf[i] = a[i] + b[i]
			}
			n, err := new.Write(buf)
			written += int64(n)
			if err != nil {
				return err
			}
			if n != len(buf) {
				return io.ErrShortWrite
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("patch: folding delta: %w", wrapStreamErr(err))
		}
		oldPos += addLen

		extraLen := int64(cmd.ExtraAppendSize)
		err = format.ReadInto(uint64(extraLen), extra, func(b []byte) error {
			n, err := new.Write(b)
			written += int64(n)
			if err != nil {
				return err
			}
			if n != len(b) {
				return io.ErrShortWrite
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("patch: reading extra: %w", wrapStreamErr(err))
		}

		oldPos += cmd.OldfileSeekOffset
	}

	// Drain the delta and extra streams so that a truncated or corrupt
	// tail which no command reached is still reported.
	if _, err := io.Copy(io.Discard, delta); err != nil {
		return fmt.Errorf("patch: draining delta: %w", wrapStreamErr(err))
	}
	if _, err := io.Copy(io.Discard, extra); err != nil {
		return fmt.Errorf("patch: draining extra: %w", wrapStreamErr(err))
	}

	if written != newSize {
		return fmt.Errorf("patch: reconstructed %d bytes, header declared %d: %w", written, newSize, patcherr.SizeMismatch)
	}

	return nil
}

func wrapStreamErr(err error) error {
	if err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", patcherr.Truncated, err)
	}
	return fmt.Errorf("%w: %v", patcherr.IoFailure, err)
}

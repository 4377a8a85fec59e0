// Package format implements the fixed-layout binary records of the BSDIFF40
// wire format: the 32-byte header and the 24-byte command triples.
package format

import (
	"fmt"

	"github.com/joshuawarner32/rsdiff/internal/offset"
	"github.com/joshuawarner32/rsdiff/internal/patcherr"
)

// Magic is the fixed 8-byte prefix of every BSDIFF40 patch.
const Magic = "BSDIFF40"

// HeaderSize is the encoded size of Header, in bytes.
const HeaderSize = 32

// Header is the fixed 32-byte prefix of a patch: magic, the two explicit
// compressed-stream sizes, and the size of the reconstructed new file. The
// compressed-extra size is implicit (patch length - HeaderSize - the other two).
type Header struct {
	CompressedCommandsSize uint64
	CompressedDeltaSize    uint64
	NewFileSize            uint64
}

// ReadHeader parses the first HeaderSize bytes of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("format: short header read (%d of %d bytes): %w", len(buf), HeaderSize, patcherr.Truncated)
	}
	if string(buf[0:8]) != Magic {
		return Header{}, fmt.Errorf("format: bad magic %q: %w", buf[0:8], patcherr.InvalidHeader)
	}

	commandsSize := offset.Read(buf[8:16])
	deltaSize := offset.Read(buf[16:24])
	newSize := offset.Read(buf[24:32])

	if commandsSize < 0 || deltaSize < 0 || newSize < 0 {
		return Header{}, fmt.Errorf("format: negative header field (commands=%d delta=%d new=%d): %w",
			commandsSize, deltaSize, newSize, patcherr.InvalidHeader)
	}

	return Header{
		CompressedCommandsSize: uint64(commandsSize),
		CompressedDeltaSize:    uint64(deltaSize),
		NewFileSize:            uint64(newSize),
	}, nil
}

// WriteTo encodes the header into buf, which must be at least HeaderSize bytes.
func (h Header) WriteTo(buf []byte) {
	copy(buf[0:8], Magic)
	offset.Write(buf[8:16], int64(h.CompressedCommandsSize))
	offset.Write(buf[16:24], int64(h.CompressedDeltaSize))
	offset.Write(buf[24:32], int64(h.NewFileSize))
}

// Bytes allocates and encodes a HeaderSize-byte buffer.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	h.WriteTo(buf)
	return buf
}

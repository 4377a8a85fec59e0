// Package patcherr defines the sentinel error kinds the engine distinguishes,
// so callers can use errors.Is against a stable, documented taxonomy instead
// of matching on error strings.
package patcherr

import "errors"

var (
	// InvalidHeader is returned for a bad patch magic or a negative header field.
	InvalidHeader = errors.New("bsdiff: invalid header")

	// Truncated is returned for a short read mid-record: a header, a command,
	// or the delta or extra stream ending before a command's byte count.
	Truncated = errors.New("bsdiff: truncated record")

	// InvalidIndexCache is returned when a persisted index's digest does not
	// match the recomputed digest of the data it claims to index, or when
	// its offsets are not the expected length (a short entry). Callers
	// should treat this as a cache miss, not a fatal error.
	InvalidIndexCache = errors.New("bsdiff: index cache digest mismatch")

	// DecompressionFailure wraps an error surfaced by the stream compressor.
	DecompressionFailure = errors.New("bsdiff: decompression failure")

	// SizeMismatch is returned when the applier wrote a different number of
	// bytes to new than the header's NewFileSize declared.
	SizeMismatch = errors.New("bsdiff: new file size mismatch")

	// IoFailure wraps an underlying I/O error (other than a clean truncation)
	// surfaced while reading or writing a patch, old file, or cache entry.
	IoFailure = errors.New("bsdiff: io failure")
)

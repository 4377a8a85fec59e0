package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/joshuawarner32/rsdiff/internal/patcherr"
)

// versionByte is mixed into the digest ahead of the indexed data. Bumping it
// invalidates every previously persisted index, which is the only mechanism
// the cache protocol has for handling a change in the persisted format.
const versionByte = 4

// DigestSize is the width, in bytes, of a content digest.
const DigestSize = sha1.Size

// Digest computes the 20-byte content digest of data: SHA-1 of
// (versionByte || data).
func Digest(data []byte) [DigestSize]byte {
	h := sha1.New()
	h.Write([]byte{versionByte})
	h.Write(data)
	var out [DigestSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Cache is the content-addressed collaborator an Index is persisted through.
// A conforming implementation may be a filesystem directory (one file per
// digest), an in-memory map, or a network object store; the core never
// opens files itself.
type Cache interface {
	// Get returns a reader for the entry named by digest, or (nil, nil) if
	// no such entry exists. Errors other than "not found" propagate.
	Get(digest [DigestSize]byte) (io.ReadCloser, error)

	// GetWriter returns a writer that will store an entry named by digest.
	GetWriter(digest [DigestSize]byte) (io.WriteCloser, error)
}

// LoadOrBuild loads a persisted index for data from cache if present and
// valid, or builds one from scratch and persists it. A persisted entry whose
// embedded digest does not match the recomputed digest of data is treated
// as a cache miss (InvalidIndexCache), not a fatal error: the index is
// rebuilt and the corrupt entry is overwritten.
func LoadOrBuild(cache Cache, data []byte) (*Index, error) {
	digest := Digest(data)

	if cache != nil {
		idx, err := load(cache, digest, data)
		if err != nil && err != patcherr.InvalidIndexCache {
			return nil, err
		}
		if idx != nil {
			return idx, nil
		}
	}

	idx := Compute(data)

	if cache != nil {
		if err := persist(cache, digest, idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func load(cache Cache, digest [DigestSize]byte, data []byte) (*Index, error) {
	r, err := cache.Get(digest)
	if err != nil {
		return nil, fmt.Errorf("index: cache get: %w", err)
	}
	if r == nil {
		return nil, nil
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("index: cache read: %w", err)
	}

	if len(body) < DigestSize {
		return nil, patcherr.InvalidIndexCache
	}
	if !bytes.Equal(body[:DigestSize], digest[:]) {
		return nil, patcherr.InvalidIndexCache
	}

	n := len(data)
	offsetBytes := body[DigestSize:]
	if len(offsetBytes) != n*8 {
		return nil, patcherr.InvalidIndexCache
	}

	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		offsets[i] = int(binary.LittleEndian.Uint64(offsetBytes[i*8 : i*8+8]))
	}

	return &Index{Data: data, Offsets: offsets}, nil
}

func persist(cache Cache, digest [DigestSize]byte, idx *Index) error {
	w, err := cache.GetWriter(digest)
	if err != nil {
		return fmt.Errorf("index: cache get writer: %w", err)
	}
	defer w.Close()

	if _, err := w.Write(digest[:]); err != nil {
		return fmt.Errorf("index: cache write digest: %w", err)
	}

	buf := make([]byte, 8*len(idx.Offsets))
	for i, off := range idx.Offsets {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(off))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("index: cache write offsets: %w", err)
	}

	return nil
}

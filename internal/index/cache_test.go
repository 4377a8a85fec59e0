package index

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// memCache is a minimal in-memory Cache, keyed by digest like a real
// filesystem or object-store binding would be.
type memCache struct {
	entries map[[DigestSize]byte][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[[DigestSize]byte][]byte{}}
}

func (c *memCache) Get(digest [DigestSize]byte) (io.ReadCloser, error) {
	b, ok := c.entries[digest]
	if !ok {
		return nil, nil
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (c *memCache) GetWriter(digest [DigestSize]byte) (io.WriteCloser, error) {
	return &memCacheWriter{c: c, digest: digest}, nil
}

type memCacheWriter struct {
	c      *memCache
	digest [DigestSize]byte
	buf    bytes.Buffer
}

func (w *memCacheWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memCacheWriter) Close() error {
	w.c.entries[w.digest] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}

func TestLoadOrBuildPersistsAndReloads(t *testing.T) {
	data := []byte("this is a test 12345678 test")
	cache := newMemCache()

	built, err := LoadOrBuild(cache, append([]byte(nil), data...))
	require.NoError(t, err)

	require.NotEmpty(t, cache.entries)

	loaded, err := LoadOrBuild(cache, append([]byte(nil), data...))
	require.NoError(t, err)
	require.Equal(t, built.Offsets, loaded.Offsets)
}

// TestLoadOrBuildRecoversFromCorruptDigest exercises spec §8 testable
// property 9: corrupting a persisted index's digest byte causes load to
// fall back to a rebuild and overwrite the entry, not a spurious error or
// silent use of corrupt offsets.
func TestLoadOrBuildRecoversFromCorruptDigest(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	cache := newMemCache()

	want, err := LoadOrBuild(cache, append([]byte(nil), data...))
	require.NoError(t, err)

	digest := Digest(data)
	stored, ok := cache.entries[digest]
	require.True(t, ok)

	corrupted := append([]byte(nil), stored...)
	corrupted[0] ^= 0xff
	cache.entries[digest] = corrupted

	rebuilt, err := LoadOrBuild(cache, append([]byte(nil), data...))
	require.NoError(t, err)
	require.Equal(t, want.Offsets, rebuilt.Offsets)

	// The corrupt entry must have been overwritten with a valid one, not
	// left in place or silently accepted.
	fixed := cache.entries[digest]
	require.NotEqual(t, corrupted, fixed)

	reloaded, err := LoadOrBuild(cache, append([]byte(nil), data...))
	require.NoError(t, err)
	require.Equal(t, want.Offsets, reloaded.Offsets)
}

func TestLoadOrBuildNilCacheAlwaysBuilds(t *testing.T) {
	data := []byte("no cache here")
	idx, err := LoadOrBuild(nil, data)
	require.NoError(t, err)
	require.Len(t, idx.Offsets, len(data))
}

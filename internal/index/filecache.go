package index

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileCache is a filesystem-directory binding of Cache: each entry is named
// by the lowercase hex of its 20-byte digest (spec §6, "one reasonable
// binding").
type FileCache struct {
	Dir string
	Log zerolog.Logger
}

// NewFileCache returns a FileCache rooted at dir. dir is created lazily on
// first write.
func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir, Log: zerolog.Nop()}
}

func (c *FileCache) path(digest [DigestSize]byte) string {
	return filepath.Join(c.Dir, hex.EncodeToString(digest[:]))
}

// Get implements Cache.
func (c *FileCache) Get(digest [DigestSize]byte) (io.ReadCloser, error) {
	f, err := os.Open(c.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			c.Log.Debug().Str("digest", hex.EncodeToString(digest[:])).Msg("index cache miss")
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// GetWriter implements Cache.
func (c *FileCache) GetWriter(digest [DigestSize]byte) (io.WriteCloser, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, err
	}
	// Write to a temp file and rename into place, so a writer that never
	// finishes (interrupted process) never leaves a file whose digest
	// prefix matches but whose offsets are partial. load() would reject
	// such a file by its length, but only after reading it, and the index
	// would then be rebuilt.
	tmp, err := os.CreateTemp(c.Dir, "."+hex.EncodeToString(digest[:])+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &renamingWriteCloser{f: tmp, finalPath: c.path(digest)}, nil
}

type renamingWriteCloser struct {
	f         *os.File
	finalPath string
}

func (w *renamingWriteCloser) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *renamingWriteCloser) Close() error {
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return os.Rename(w.f.Name(), w.finalPath)
}

// Package rsdiff implements a BSDIFF40-compatible binary delta engine: a
// suffix-sorted index over an old file, a match iterator that walks a new
// file against it, and a three-stream bzip2-compressed patch format
// readable by any conforming bsdiff implementation.
package rsdiff

import (
	"io"

	"github.com/joshuawarner32/rsdiff/internal/index"
	"github.com/joshuawarner32/rsdiff/internal/match"
	"github.com/joshuawarner32/rsdiff/internal/patch"
)

// Index is a suffix-sorted search structure over an old file's bytes.
type Index = index.Index

// Cache is the content-addressed collaborator an Index may be persisted
// through across repeated diffs against the same old file.
type Cache = index.Cache

// Compute builds an Index over data from scratch.
func Compute(data []byte) *Index {
	return index.Compute(data)
}

// LoadOrBuild loads a persisted Index for data from cache if present and
// valid, or builds and persists one. cache may be nil to always build
// from scratch.
func LoadOrBuild(cache Cache, data []byte) (*Index, error) {
	return index.LoadOrBuild(cache, data)
}

// GenerateFullPatch computes the delta-compressed patch transforming the
// data indexed by old into newBytes.
func GenerateFullPatch(old *Index, newBytes []byte) ([]byte, error) {
	return patch.GenerateFullPatch(old, newBytes)
}

// GenerateIdentityPatch produces a patch that reproduces its input
// unchanged, for any input of the given size.
func GenerateIdentityPatch(size uint64) ([]byte, error) {
	return patch.GenerateIdentityPatch(size)
}

// GenerateIdempotentPatch produces a patch that reproduces desiredOutput
// regardless of the old bytes it is applied to.
func GenerateIdempotentPatch(desiredOutput []byte) ([]byte, error) {
	return patch.GenerateIdempotentPatch(desiredOutput)
}

// Apply reconstructs new from old and a BSDIFF40-compatible patch,
// streaming both: old is read by seeking rather than loaded whole, and new
// is written incrementally as it's produced. Errors are drawn from the
// internal/patcherr taxonomy and can be matched with errors.Is.
func Apply(patchBytes []byte, old io.ReadSeeker, new io.Writer) error {
	return patch.Apply(patchBytes, old, new)
}

// DiffStat summarizes the shape of a diff between old and newBytes without
// materializing a patch: how much of newBytes was covered by matches
// against old versus copied as literal extra bytes.
type DiffStat struct {
	MatchCount   int
	MatchedBytes int
	LiteralBytes int
	OldBytes     int
	NewBytes     int
}

// Stat computes a DiffStat for newBytes against the old file indexed by
// old, without generating a patch. Grounded on the original Rust engine's
// diff-statistics pass (original_source/src/diff.rs), which the distilled
// spec dropped but which is cheap to derive from the same match iterator
// GenerateFullPatch uses.
func Stat(old *Index, newBytes []byte) DiffStat {
	matches := match.All(old, newBytes)

	stat := DiffStat{
		OldBytes: len(old.Data),
		NewBytes: len(newBytes),
	}
	for _, m := range matches {
		stat.MatchCount++
		stat.MatchedBytes += m.Matched.Len()
		stat.LiteralBytes += m.UnmatchedSuffix
	}
	return stat
}

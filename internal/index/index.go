// Package index implements the suffix-sorted index over the old bytes: its
// construction, its persisted cache form, and the longest_match search used
// to drive diff generation.
package index

import "bytes"

// Index is an ordered permutation of [0, len(Data)) sorted by the
// lexicographic order of the suffixes Data[offset:]. It owns Data for the
// duration of a diff.
type Index struct {
	Data    []byte
	Offsets []int
}

// Compute builds a suffix index over data using a rank-doubling suffix sort
// (the classic bsdiff qsufsort), taking ownership of data.
func Compute(data []byte) *Index {
	n := len(data)
	iii := make([]int, n+1)
	vvv := make([]int, n+1)
	qsufsort(iii, vvv, data)

	// iii[0] holds the sentinel entry produced by qsufsort; the suffix
	// index proper is the remaining n offsets, already a permutation of
	// [0, n).
	offsets := make([]int, n)
	copy(offsets, iii[1:])

	return &Index{Data: data, Offsets: offsets}
}

// suffixCompare returns <0, 0, >0 as Data[a:] compares to Data[b:], with
// shorter-is-less on equal prefix (standard lexicographic order).
func (idx *Index) suffixCompare(a, b int) int {
	return bytes.Compare(idx.Data[a:], idx.Data[b:])
}

// compareSuffixToBuf returns <0, 0, >0 as Data[off:] compares to buf, with
// shorter-is-less on equal prefix.
func (idx *Index) compareSuffixToBuf(off int, buf []byte) int {
	suf := idx.Data[off:]
	l := len(suf)
	if len(buf) < l {
		l = len(buf)
	}
	cmp := bytes.Compare(suf[:l], buf[:l])
	if cmp != 0 {
		return cmp
	}
	return len(suf) - len(buf)
}

// searchIndex performs the binary search of spec §4.3: it returns the
// position i such that Offsets[i] is the first offset whose suffix is >=
// buf (an "insertion point" in the absence of an exact hit), scanning the
// range [lo, hi).
func (idx *Index) searchIndex(buf []byte, lo, hi int) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if idx.compareSuffixToBuf(idx.Offsets[mid], buf) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func matchLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// LongestMatch returns the [start, end) range in Data of the suffix that
// shares the longest common prefix with buf. Ties between the insertion
// point's immediate neighbors break toward the lower (earlier) candidate. If
// both candidates tie at length 0, an empty range at an arbitrary valid
// start is returned.
func (idx *Index) LongestMatch(buf []byte) (start, end int) {
	n := len(idx.Offsets)
	if n == 0 {
		return 0, 0
	}

	i := idx.searchIndex(buf, 0, n)

	bestStart := idx.Offsets[0]
	bestLen := -1

	// candidate i-1
	if i > 0 {
		s := idx.Offsets[i-1]
		l := matchLen(idx.Data[s:], buf)
		if l > bestLen {
			bestLen = l
			bestStart = s
		}
	}
	// candidate i
	if i < n {
		s := idx.Offsets[i]
		l := matchLen(idx.Data[s:], buf)
		if l > bestLen {
			bestLen = l
			bestStart = s
		}
	}

	if bestLen < 0 {
		bestLen = 0
	}

	return bestStart, bestStart + bestLen
}

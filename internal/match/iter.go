package match

import "github.com/joshuawarner32/rsdiff/internal/index"

const minMatchLen = 8

// Iter is the match-iteration state machine of spec §4.5: it carries a
// cursor into new, the end of the previously emitted exact match, and a
// pending Delta, and produces a Match per call to Next.
type Iter struct {
	old *index.Index
	new []byte

	i       int
	lastEnd int
	pending Delta
	done    bool
}

// New returns an iterator walking new against the suffix index old.
func New(old *index.Index, newBytes []byte) *Iter {
	return &Iter{old: old, new: newBytes}
}

// All drains the iterator into a slice, for callers that don't need
// streaming consumption (e.g. tests and DiffStat).
func All(old *index.Index, newBytes []byte) []Match {
	it := New(old, newBytes)
	var out []Match
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

// Next returns the next Match, or (Match{}, false) when the iterator is
// exhausted.
func (it *Iter) Next() (Match, bool) {
	for {
		if it.done {
			return Match{}, false
		}

		if it.i >= len(it.new) {
			it.done = true
			suffix := len(it.new) - it.lastEnd
			if it.pending.Len() > 0 || suffix > 0 {
				return Match{Matched: it.pending, UnmatchedSuffix: suffix}, true
			}
			return Match{}, false
		}

		start, end := it.old.LongestMatch(it.new[it.i:])
		mlen := end - start

		if mlen >= minMatchLen {
			pml := index.ForwardPartial(it.old.Data[end:], it.new[it.i+mlen:])
			rpml := index.ReversePartial(it.old.Data[:start], it.new[it.lastEnd:it.i])

			newDelta := Delta{
				OldOffset:     start - rpml,
				LowerDeltaLen: rpml,
				MidExactLen:   mlen,
				UpperDeltaLen: pml,
			}

			unmatchedSuffix := (it.i - rpml) - it.lastEnd

			prevPending := it.pending
			emit := prevPending.Len() > 0 || unmatchedSuffix > 0

			it.pending = newDelta
			it.lastEnd = it.i + mlen + pml
			it.i += max(1, mlen+pml)

			if emit {
				return Match{Matched: prevPending, UnmatchedSuffix: unmatchedSuffix}, true
			}
			continue
		}

		it.i += max(1, mlen)
	}
}

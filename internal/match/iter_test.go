package match

import (
	"testing"

	"github.com/joshuawarner32/rsdiff/internal/index"
	"github.com/stretchr/testify/require"
)

func TestIterIdentityIsSingleMatch(t *testing.T) {
	data := []byte("this is a test")
	idx := index.Compute(append([]byte(nil), data...))

	matches := All(idx, data)
	require.Len(t, matches, 1)
	require.Equal(t, Delta{OldOffset: 0, LowerDeltaLen: 0, MidExactLen: 14, UpperDeltaLen: 0}, matches[0].Matched)
	require.Equal(t, 0, matches[0].UnmatchedSuffix)
}

func TestIterCoverageInvariant(t *testing.T) {
	old := []byte("this is a test 12345678 test")
	newBytes := []byte("this is really a cool uftu 12345678 uftu")

	idx := index.Compute(append([]byte(nil), old...))
	matches := All(idx, newBytes)

	require.NotEmpty(t, matches)

	total := 0
	for _, m := range matches {
		require.LessOrEqual(t, m.Matched.OldOffset+m.Matched.Len(), len(old))
		require.GreaterOrEqual(t, m.Matched.OldOffset, 0)
		total += m.Matched.Len() + m.UnmatchedSuffix
	}
	require.Equal(t, len(newBytes), total)
}

func TestIterCoverageInvariantRandomish(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog, again and again and again")
	newBytes := []byte("the slow brown fox leaps over the sleepy dog, again and yet again and again and again")

	idx := index.Compute(append([]byte(nil), old...))
	matches := All(idx, newBytes)

	total := 0
	for _, m := range matches {
		total += m.Matched.Len() + m.UnmatchedSuffix
	}
	require.Equal(t, len(newBytes), total)
}

package patch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuawarner32/rsdiff/internal/index"
)

func applyHelper(t *testing.T, old, patchBytes []byte) []byte {
	t.Helper()
	var new bytes.Buffer
	err := Apply(patchBytes, bytes.NewReader(old), &new)
	require.NoError(t, err)
	return new.Bytes()
}

func TestIdentityPatchRoundTrip(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog")

	patchBytes, err := GenerateIdentityPatch(uint64(len(old)))
	require.NoError(t, err)

	require.Equal(t, old, applyHelper(t, old, patchBytes))
}

func TestIdempotentPatchRoundTrip(t *testing.T) {
	desired := []byte("completely unrelated replacement content")

	patchBytes, err := GenerateIdempotentPatch(desired)
	require.NoError(t, err)

	for _, old := range [][]byte{
		[]byte(""),
		[]byte("anything at all"),
		desired,
	} {
		require.Equal(t, desired, applyHelper(t, old, patchBytes))
	}
}

func TestFullPatchRoundTrip(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog, again and again and again")
	newBytes := []byte("the slow brown fox leaps over the sleepy dog, again and yet again and again and again")

	idx := index.Compute(append([]byte(nil), old...))

	patchBytes, err := GenerateFullPatch(idx, newBytes)
	require.NoError(t, err)

	require.Equal(t, newBytes, applyHelper(t, old, patchBytes))
}

func TestFullPatchRoundTripEmptyNew(t *testing.T) {
	old := []byte("some old content here")
	newBytes := []byte("")

	idx := index.Compute(append([]byte(nil), old...))

	patchBytes, err := GenerateFullPatch(idx, newBytes)
	require.NoError(t, err)

	require.Equal(t, newBytes, applyHelper(t, old, patchBytes))
}

func TestApplyRejectsBadMagic(t *testing.T) {
	bad := make([]byte, 32)
	copy(bad, "NOTBSDIF")

	var new bytes.Buffer
	err := Apply(bad, bytes.NewReader(nil), &new)
	require.Error(t, err)
}

func TestApplyRejectsTruncatedPatch(t *testing.T) {
	old := []byte("hello world")
	patchBytes, err := GenerateIdentityPatch(uint64(len(old)))
	require.NoError(t, err)

	var new bytes.Buffer
	err = Apply(patchBytes[:len(patchBytes)-5], bytes.NewReader(old), &new)
	require.Error(t, err)
}

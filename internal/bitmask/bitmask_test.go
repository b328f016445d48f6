package bitmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyAndDot(t *testing.T) {
	for _, raw := range []string{"", "."} {
		h1, h2, err := Decode(raw)
		require.NoError(t, err)
		assert.Nil(t, h1)
		assert.Nil(t, h2)
	}
}

func TestDecode_SingleWord(t *testing.T) {
	h1, h2, err := Decode("1")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, h1)
	assert.Empty(t, h2)

	h1, h2, err = Decode("3")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, h1)
	assert.Equal(t, []int{0}, h2)

	h1, h2, err = Decode("1024")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, h1)
	assert.Empty(t, h2)
}

func TestDecode_ZeroWord(t *testing.T) {
	h1, h2, err := Decode("0")
	require.NoError(t, err)
	assert.Nil(t, h1)
	assert.Nil(t, h2)
}

func TestDecode_MultiWordEffectIndexOffset(t *testing.T) {
	h1, h2, err := Decode("1,1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 15}, h1)
	assert.Empty(t, h2)

	h1, h2, err = Decode("3,3,3,3")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 15, 30, 45}, h1)
	assert.Equal(t, []int{0, 15, 30, 45}, h2)
}

func TestDecode_TrailingZeroWordsStripped(t *testing.T) {
	h1, h2, err := Decode("1024,0,0")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, h1)
	assert.Empty(t, h2)
}

func TestDecode_InteriorZeroWordKept(t *testing.T) {
	h1, _, err := Decode("1024,0,4096")
	require.NoError(t, err)
	// word 0 -> bit 5; word1 (value 0) contributes nothing; word2 -> 4096 = 1<<12, pair index 6, effect 15*2+6=36
	assert.Equal(t, []int{5, 36}, h1)
}

func TestDecode_NegativeWordIsFatal(t *testing.T) {
	_, _, err := Decode("-1,0,4096")
	require.ErrorIs(t, err, ErrOutdatedCSQ)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{"1", "3", "1024", "1,1", "3,3,3,3"}
	for _, raw := range cases {
		h1, h2, err := Decode(raw)
		require.NoError(t, err)
		reEncoded := Encode(h1, h2)
		h1b, h2b, err := Decode(reEncoded)
		require.NoError(t, err)
		assert.Equal(t, h1, h1b, "round-trip haplotype 1 for %q", raw)
		assert.Equal(t, h2, h2b, "round-trip haplotype 2 for %q", raw)
	}
}

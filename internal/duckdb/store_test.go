package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndQueryMutationRecords(t *testing.T) {
	s := openInMemory(t)

	records := []MutationRecord{
		{Sample: "SAMPLE1", Haplotype: 1, TranscriptID: "ENST00000311936", Kind: "missense", RefPos: 11, MutPos: 11, Opcode: "M", EditedLength: 38},
		{Sample: "SAMPLE1", Haplotype: 2, TranscriptID: "ENST00000311936", Kind: "stop_gained", RefPos: 20, MutPos: 20, Opcode: "G", EditedLength: 20},
		{Sample: "SAMPLE2", Haplotype: 1, TranscriptID: "ENST00000256078", Kind: "frameshift", RefPos: 5, MutPos: 5, Opcode: "F", EditedLength: 12},
	}
	require.NoError(t, s.WriteMutationRecords(records))

	sample1, err := s.MutationsForSample("SAMPLE1")
	require.NoError(t, err)
	require.Len(t, sample1, 2)
	assert.Equal(t, 1, sample1[0].Haplotype)
	assert.Equal(t, "missense", sample1[0].Kind)
	assert.Equal(t, 2, sample1[1].Haplotype)
	assert.Equal(t, "stop_gained", sample1[1].Kind)

	sample2, err := s.MutationsForSample("SAMPLE2")
	require.NoError(t, err)
	require.Len(t, sample2, 1)
	assert.Equal(t, "ENST00000256078", sample2[0].TranscriptID)

	none, err := s.MutationsForSample("NOBODY")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWriteMutationRecords_EmptyIsNoop(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteMutationRecords(nil))

	all, err := s.MutationsForSample("ANY")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCountByKind(t *testing.T) {
	s := openInMemory(t)

	records := []MutationRecord{
		{Sample: "S1", Haplotype: 1, TranscriptID: "T1", Kind: "missense", RefPos: 1, MutPos: 1, Opcode: "M", EditedLength: 10},
		{Sample: "S1", Haplotype: 2, TranscriptID: "T1", Kind: "missense", RefPos: 2, MutPos: 2, Opcode: "M", EditedLength: 10},
		{Sample: "S2", Haplotype: 1, TranscriptID: "T1", Kind: "stop_gained", RefPos: 3, MutPos: 3, Opcode: "G", EditedLength: 3},
	}
	require.NoError(t, s.WriteMutationRecords(records))

	counts, err := s.CountByKind()
	require.NoError(t, err)
	assert.Equal(t, 2, counts["missense"])
	assert.Equal(t, 1, counts["stop_gained"])
}

func TestClear(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteMutationRecords([]MutationRecord{
		{Sample: "S1", Haplotype: 1, TranscriptID: "T1", Kind: "missense", RefPos: 1, MutPos: 1, Opcode: "M", EditedLength: 10},
	}))

	found, err := s.MutationsForSample("S1")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, s.Clear())

	found, err = s.MutationsForSample("S1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

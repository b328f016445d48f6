package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppg-tools/ppg/internal/duckdb"
	"github.com/ppg-tools/ppg/internal/mutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAccumulator() *Accumulator {
	a := NewAccumulator()
	a.Record(Event{Sample: "S1", Haplotype: 1, TranscriptID: "ENST1", Kind: mutation.KindMissense, RefPos: 11, MutPos: 11, Opcode: 'M', EditedLength: 38})
	a.Record(Event{Sample: "S1", Haplotype: 2, TranscriptID: "ENST1", Kind: mutation.KindStopGained, RefPos: 20, MutPos: 20, Opcode: 'G', EditedLength: 20})
	a.Record(Event{Sample: "S2", Haplotype: 1, TranscriptID: "ENST2", Kind: mutation.KindFrameshift, RefPos: 5, MutPos: 5, Opcode: 'F', EditedLength: 12})
	return a
}

func TestAccumulator_Summaries(t *testing.T) {
	a := sampleAccumulator()

	samples := a.SampleSummaries()
	require.Len(t, samples, 2)
	assert.Equal(t, "S1", samples[0].Sample)
	assert.Equal(t, 2, samples[0].TotalMutations)
	assert.Len(t, samples[0].TranscriptsAffected, 1)
	assert.Equal(t, 1, samples[0].KindCounts[mutation.KindMissense])
	assert.Equal(t, 1, samples[0].KindCounts[mutation.KindStopGained])

	transcripts := a.TranscriptSummaries()
	require.Len(t, transcripts, 2)
	assert.Equal(t, "ENST1", transcripts[0].TranscriptID)
	assert.Equal(t, 2, transcripts[0].TotalMutations)
	assert.Len(t, transcripts[0].SamplesAffected, 1)
}

func TestAccumulator_MutationRecords(t *testing.T) {
	a := sampleAccumulator()
	records := a.MutationRecords()
	require.Len(t, records, 3)
	assert.Equal(t, "S1", records[0].Sample)
	assert.Equal(t, "missense", records[0].Kind)
	assert.Equal(t, "M", records[0].Opcode)
}

func TestAccumulator_PersistToDuckDB(t *testing.T) {
	store, err := duckdb.Open("")
	require.NoError(t, err)
	defer store.Close()

	a := sampleAccumulator()
	require.NoError(t, a.PersistToDuckDB(store))

	found, err := store.MutationsForSample("S1")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestWriteReports_ThreeTSVFiles(t *testing.T) {
	dir := t.TempDir()
	a := sampleAccumulator()
	require.NoError(t, a.WriteReports(dir))

	proband, err := os.ReadFile(filepath.Join(dir, "number_of_mutations_per_proband.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(proband), "\n"), "\n")
	require.Len(t, lines, 3) // header + S1 + S2
	assert.Equal(t, "sample\tnum_mutations\tnum_transcripts_affected", lines[0])
	assert.Equal(t, "S1\t2\t1", lines[1])

	kinds, err := os.ReadFile(filepath.Join(dir, "type_of_mutations_per_patient.tsv"))
	require.NoError(t, err)
	kindLines := strings.Split(strings.TrimRight(string(kinds), "\n"), "\n")
	require.Len(t, kindLines, 3)
	header := strings.Split(kindLines[0], "\t")
	assert.Equal(t, "sample", header[0])
	assert.Equal(t, string(mutation.KindMissense), header[1])
	assert.Equal(t, string(mutation.KindStartLostSpliceRegion), header[len(header)-1])

	transcripts, err := os.ReadFile(filepath.Join(dir, "number_of_mutations_per_transcript.tsv"))
	require.NoError(t, err)
	tLines := strings.Split(strings.TrimRight(string(transcripts), "\n"), "\n")
	require.Len(t, tLines, 3) // header + ENST1 + ENST2
}

func TestWriteSampleJSON(t *testing.T) {
	dir := t.TempDir()
	a := sampleAccumulator()
	summary := a.SampleSummaries()[0]

	annotations := map[string][2]int{"ENST1": {0, 38}}
	require.NoError(t, WriteSampleJSON(dir, "S1", annotations, summary))

	data, err := os.ReadFile(filepath.Join(dir, "S1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ENST1"`)
	assert.Contains(t, string(data), `"missense": 1`)
}

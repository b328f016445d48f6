// Package report accumulates per-sample and per-transcript mutation
// counts while a run executes and writes them out as the three
// fixed-column TSV tables, optional per-sample JSON dumps, and an
// optional persisted DuckDB store. Grounded on internal/output/tab.go's
// bufio.Writer + fixed-column convention.
package report

import (
	"fmt"

	"github.com/ppg-tools/ppg/internal/duckdb"
	"github.com/ppg-tools/ppg/internal/mutation"
)

// Event is one compiled instruction's provenance, recorded once per
// mutation as the transcript compiler runs.
type Event struct {
	Sample       string
	Haplotype    int // 1 or 2
	TranscriptID string
	Kind         mutation.Kind
	RefPos       int
	MutPos       int
	Opcode       byte
	EditedLength int
}

// SampleSummary aggregates Events for one sample.
type SampleSummary struct {
	Sample              string
	TotalMutations      int
	TranscriptsAffected map[string]bool
	KindCounts          map[mutation.Kind]int
}

// TranscriptSummary aggregates Events for one transcript.
type TranscriptSummary struct {
	TranscriptID    string
	TotalMutations  int
	SamplesAffected map[string]bool
}

// Accumulator collects Events across an entire run and produces the
// three report tables, per-sample JSON dumps, and DuckDB rows from them.
type Accumulator struct {
	events []Event

	samples     map[string]*SampleSummary
	sampleOrder []string

	transcripts     map[string]*TranscriptSummary
	transcriptOrder []string
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		samples:     make(map[string]*SampleSummary),
		transcripts: make(map[string]*TranscriptSummary),
	}
}

// Record folds one Event into the running summaries.
func (a *Accumulator) Record(e Event) {
	a.events = append(a.events, e)

	ss, ok := a.samples[e.Sample]
	if !ok {
		ss = &SampleSummary{
			Sample:              e.Sample,
			TranscriptsAffected: make(map[string]bool),
			KindCounts:          make(map[mutation.Kind]int),
		}
		a.samples[e.Sample] = ss
		a.sampleOrder = append(a.sampleOrder, e.Sample)
	}
	ss.TotalMutations++
	ss.KindCounts[e.Kind]++
	ss.TranscriptsAffected[e.TranscriptID] = true

	ts, ok := a.transcripts[e.TranscriptID]
	if !ok {
		ts = &TranscriptSummary{
			TranscriptID:    e.TranscriptID,
			SamplesAffected: make(map[string]bool),
		}
		a.transcripts[e.TranscriptID] = ts
		a.transcriptOrder = append(a.transcriptOrder, e.TranscriptID)
	}
	ts.TotalMutations++
	ts.SamplesAffected[e.Sample] = true
}

// SampleSummary returns the running summary for one sample, or nil if
// Record has never been called for it.
func (a *Accumulator) SampleSummary(sample string) *SampleSummary {
	return a.samples[sample]
}

// SampleSummaries returns the per-sample summaries in first-seen order.
func (a *Accumulator) SampleSummaries() []*SampleSummary {
	out := make([]*SampleSummary, 0, len(a.sampleOrder))
	for _, name := range a.sampleOrder {
		out = append(out, a.samples[name])
	}
	return out
}

// TranscriptSummaries returns the per-transcript summaries in
// first-seen order.
func (a *Accumulator) TranscriptSummaries() []*TranscriptSummary {
	out := make([]*TranscriptSummary, 0, len(a.transcriptOrder))
	for _, id := range a.transcriptOrder {
		out = append(out, a.transcripts[id])
	}
	return out
}

// MutationRecords converts every recorded Event into a
// duckdb.MutationRecord, the shape WriteMutationRecords expects.
func (a *Accumulator) MutationRecords() []duckdb.MutationRecord {
	out := make([]duckdb.MutationRecord, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, duckdb.MutationRecord{
			Sample:       e.Sample,
			Haplotype:    e.Haplotype,
			TranscriptID: e.TranscriptID,
			Kind:         string(e.Kind),
			RefPos:       e.RefPos,
			MutPos:       e.MutPos,
			Opcode:       string(e.Opcode),
			EditedLength: e.EditedLength,
		})
	}
	return out
}

// PersistToDuckDB bulk-loads every recorded Event into store via the
// Appender API.
func (a *Accumulator) PersistToDuckDB(store *duckdb.Store) error {
	if err := store.WriteMutationRecords(a.MutationRecords()); err != nil {
		return fmt.Errorf("persist mutation records: %w", err)
	}
	return nil
}

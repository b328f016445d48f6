package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppg-tools/ppg/internal/mutation"
)

// Summary is a per-run textual/TSV summary: total mutations processed,
// transcripts skipped during compilation, and per-kind totals across
// every sample. Grounded on the original prototype's run summary
// (original_source's summary routine), supplemented here since spec.md
// left it out of the distillation.
type Summary struct {
	TotalMutations    int
	SkippedTranscripts []SkippedTranscript
	KindTotals        map[mutation.Kind]int
}

// SkippedTranscript records one transcript dropped during compilation,
// with the reason it failed.
type SkippedTranscript struct {
	TranscriptID string
	Reason       string
}

// NewSummary builds a Summary from an Accumulator's recorded Events.
func NewSummary(a *Accumulator) *Summary {
	s := &Summary{KindTotals: make(map[mutation.Kind]int)}
	for _, s2 := range a.SampleSummaries() {
		s.TotalMutations += s2.TotalMutations
		for k, n := range s2.KindCounts {
			s.KindTotals[k] += n
		}
	}
	return s
}

// RecordSkip appends one skipped transcript to the summary.
func (s *Summary) RecordSkip(transcriptID, reason string) {
	s.SkippedTranscripts = append(s.SkippedTranscripts, SkippedTranscript{TranscriptID: transcriptID, Reason: reason})
}

// WriteText writes a human-readable summary to w (used for --verbose
// stderr output).
func (s *Summary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "total mutations: %d\n", s.TotalMutations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "transcripts skipped: %d\n", len(s.SkippedTranscripts)); err != nil {
		return err
	}
	for _, k := range mutation.Kinds {
		if n := s.KindTotals[k]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %s: %d\n", k, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTSV writes summary.tsv into dir (used when --stats is set).
func (s *Summary) WriteTSV(dir string) error {
	path := filepath.Join(dir, "summary.tsv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "metric\tvalue\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "total_mutations\t%d\n", s.TotalMutations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "transcripts_skipped\t%d\n", len(s.SkippedTranscripts)); err != nil {
		return err
	}
	for _, k := range mutation.Kinds {
		if n := s.KindTotals[k]; n > 0 {
			if _, err := fmt.Fprintf(f, "kind_%s\t%d\n", k, n); err != nil {
				return err
			}
		}
	}

	sort.Slice(s.SkippedTranscripts, func(i, j int) bool {
		return s.SkippedTranscripts[i].TranscriptID < s.SkippedTranscripts[j].TranscriptID
	})
	for _, sk := range s.SkippedTranscripts {
		if _, err := fmt.Fprintf(f, "skipped\t%s: %s\n", sk.TranscriptID, sk.Reason); err != nil {
			return err
		}
	}
	return nil
}

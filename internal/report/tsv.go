package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ppg-tools/ppg/internal/mutation"
)

// ProbandWriter writes number_of_mutations_per_proband.tsv: one row per
// sample with its total mutation count and the number of distinct
// transcripts it affected.
type ProbandWriter struct {
	w *bufio.Writer
}

// NewProbandWriter wraps w in a buffered TSV writer.
func NewProbandWriter(w io.Writer) *ProbandWriter {
	return &ProbandWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header row.
func (p *ProbandWriter) WriteHeader() error {
	_, err := p.w.WriteString("sample\tnum_mutations\tnum_transcripts_affected\n")
	return err
}

// Write writes one sample's row.
func (p *ProbandWriter) Write(s *SampleSummary) error {
	_, err := fmt.Fprintf(p.w, "%s\t%d\t%d\n", s.Sample, s.TotalMutations, len(s.TranscriptsAffected))
	return err
}

// Flush flushes buffered output.
func (p *ProbandWriter) Flush() error {
	return p.w.Flush()
}

// PatientKindWriter writes type_of_mutations_per_patient.tsv: one row
// per sample, one column per mutation kind in the fixed 22-kind order.
type PatientKindWriter struct {
	w *bufio.Writer
}

// NewPatientKindWriter wraps w in a buffered TSV writer.
func NewPatientKindWriter(w io.Writer) *PatientKindWriter {
	return &PatientKindWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header row: "sample" followed by every kind in
// mutation.Kinds' fixed order.
func (p *PatientKindWriter) WriteHeader() error {
	cols := make([]string, 0, len(mutation.Kinds)+1)
	cols = append(cols, "sample")
	for _, k := range mutation.Kinds {
		cols = append(cols, string(k))
	}
	_, err := p.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes one sample's row of per-kind counts.
func (p *PatientKindWriter) Write(s *SampleSummary) error {
	if _, err := p.w.WriteString(s.Sample); err != nil {
		return err
	}
	for _, k := range mutation.Kinds {
		if _, err := fmt.Fprintf(p.w, "\t%d", s.KindCounts[k]); err != nil {
			return err
		}
	}
	_, err := p.w.WriteString("\n")
	return err
}

// Flush flushes buffered output.
func (p *PatientKindWriter) Flush() error {
	return p.w.Flush()
}

// TranscriptWriter writes number_of_mutations_per_transcript.tsv: one
// row per transcript with its total mutation count and the number of
// distinct samples carrying an edit in it.
type TranscriptWriter struct {
	w *bufio.Writer
}

// NewTranscriptWriter wraps w in a buffered TSV writer.
func NewTranscriptWriter(w io.Writer) *TranscriptWriter {
	return &TranscriptWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header row.
func (t *TranscriptWriter) WriteHeader() error {
	_, err := t.w.WriteString("transcript_id\tnum_mutations\tnum_samples_affected\n")
	return err
}

// Write writes one transcript's row.
func (t *TranscriptWriter) Write(s *TranscriptSummary) error {
	_, err := fmt.Fprintf(t.w, "%s\t%d\t%d\n", s.TranscriptID, s.TotalMutations, len(s.SamplesAffected))
	return err
}

// Flush flushes buffered output.
func (t *TranscriptWriter) Flush() error {
	return t.w.Flush()
}

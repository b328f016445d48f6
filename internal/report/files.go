package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteReports creates the three fixed-name TSV tables inside dir:
// number_of_mutations_per_proband.tsv, type_of_mutations_per_patient.tsv,
// and number_of_mutations_per_transcript.tsv.
func (a *Accumulator) WriteReports(dir string) error {
	if err := writeProbandTSV(filepath.Join(dir, "number_of_mutations_per_proband.tsv"), a.SampleSummaries()); err != nil {
		return err
	}
	if err := writePatientKindTSV(filepath.Join(dir, "type_of_mutations_per_patient.tsv"), a.SampleSummaries()); err != nil {
		return err
	}
	if err := writeTranscriptTSV(filepath.Join(dir, "number_of_mutations_per_transcript.tsv"), a.TranscriptSummaries()); err != nil {
		return err
	}
	return nil
}

func writeProbandTSV(path string, samples []*SampleSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := NewProbandWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, s := range samples {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writePatientKindTSV(path string, samples []*SampleSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := NewPatientKindWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, s := range samples {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeTranscriptTSV(path string, transcripts []*TranscriptSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := NewTranscriptWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, t := range transcripts {
		if err := w.Write(t); err != nil {
			return err
		}
	}
	return w.Flush()
}

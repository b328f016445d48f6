package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppg-tools/ppg/internal/mutation"
)

// sampleDump is the on-disk shape of one sample's optional JSON dump:
// the intermediate {transcript_id -> (start,end)} annotation map plus
// per-kind mutation counts. A plain stdlib encoding/json map dump like
// this has no third-party equivalent anywhere in the reference pack.
type sampleDump struct {
	Sample         string            `json:"sample"`
	Annotations    map[string][2]int `json:"annotations"`
	MutationCounts map[string]int    `json:"mutation_counts"`
}

// WriteSampleJSON writes one sample's intermediate annotation map and
// per-kind mutation counts to <dir>/<sample>.json.
func WriteSampleJSON(dir, sample string, annotations map[string][2]int, summary *SampleSummary) error {
	dump := sampleDump{
		Sample:         sample,
		Annotations:    annotations,
		MutationCounts: make(map[string]int, len(mutation.Kinds)),
	}
	if summary != nil {
		for _, k := range mutation.Kinds {
			if n := summary.KindCounts[k]; n > 0 {
				dump.MutationCounts[string(k)] = n
			}
		}
	}

	path := filepath.Join(dir, sample+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encode sample json %s: %w", path, err)
	}
	return nil
}

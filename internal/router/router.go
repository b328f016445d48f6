// Package router implements stage 2 of the pipeline: for each sample and
// haplotype, decode which BCSQ effects apply (internal/bitmask) and group
// the resulting mutations by transcript, sorted by reference position.
// See spec.md §4.2.
package router

import (
	"fmt"
	"sort"

	"github.com/ppg-tools/ppg/internal/bitmask"
	"github.com/ppg-tools/ppg/internal/mutation"
)

// AltTranscript is one transcript's ordered mutation list for a single
// sample haplotype.
type AltTranscript struct {
	TranscriptID string
	Mutations    []mutation.Mutation
}

// Haplotype groups AltTranscripts for one haplotype (1 or 2) of one
// sample, keyed by transcript ID for deterministic lookup plus an
// insertion-stable ordered list for iteration.
type Haplotype struct {
	Transcripts    map[string]*AltTranscript
	TranscriptOrder []string
}

// SampleRoute is the routed output for a single sample: its two
// haplotypes, each grouping affected transcripts.
type SampleRoute struct {
	SampleName string
	Hap1       Haplotype
	Hap2       Haplotype
}

func newHaplotype() Haplotype {
	return Haplotype{Transcripts: make(map[string]*AltTranscript)}
}

func (h *Haplotype) add(m mutation.Mutation) {
	t, ok := h.Transcripts[m.TranscriptID]
	if !ok {
		t = &AltTranscript{TranscriptID: m.TranscriptID}
		h.Transcripts[m.TranscriptID] = t
		h.TranscriptOrder = append(h.TranscriptOrder, m.TranscriptID)
	}
	t.Mutations = append(t.Mutations, m)
}

// Sort orders every transcript's mutation list by ascending reference
// position. TranscriptOrder itself is left alone: transcripts are
// processed in the order they first appeared in the router's input, not
// sorted.
func (h *Haplotype) Sort() {
	for _, id := range h.TranscriptOrder {
		sort.Stable(mutation.ByRefPos(h.Transcripts[id].Mutations))
	}
}

// RouteSample decodes one sample's bitmask field against its parsed BCSQ
// mutation list and groups the result into a SampleRoute. effects is the
// ordered list of candidate mutations parsed from the site's CSQ INFO
// field (shared across all samples of the record); bitmaskField is that
// sample's own per-genotype bitmask value.
func RouteSample(sampleName string, effects []mutation.Mutation, bitmaskField string) (SampleRoute, error) {
	hap1idx, hap2idx, err := bitmask.Decode(bitmaskField)
	if err != nil {
		return SampleRoute{}, fmt.Errorf("sample %s: %w", sampleName, err)
	}

	route := SampleRoute{SampleName: sampleName, Hap1: newHaplotype(), Hap2: newHaplotype()}
	for _, i := range hap1idx {
		if i < 0 || i >= len(effects) {
			return SampleRoute{}, fmt.Errorf("sample %s: haplotype 1 effect index %d out of range (have %d effects)", sampleName, i, len(effects))
		}
		route.Hap1.add(effects[i])
	}
	for _, i := range hap2idx {
		if i < 0 || i >= len(effects) {
			return SampleRoute{}, fmt.Errorf("sample %s: haplotype 2 effect index %d out of range (have %d effects)", sampleName, i, len(effects))
		}
		route.Hap2.add(effects[i])
	}
	route.Hap1.Sort()
	route.Hap2.Sort()
	return route, nil
}

// MergeInto folds the mutations of src (a later variant record's route
// for the same sample) into dst, accumulating transcripts across records.
// Used by callers iterating a VCF's records to build up one SampleRoute
// per sample across the whole file before sorting and compiling.
func MergeInto(dst *SampleRoute, src SampleRoute) {
	if dst.SampleName == "" {
		dst.SampleName = src.SampleName
		dst.Hap1 = newHaplotype()
		dst.Hap2 = newHaplotype()
	}
	for _, id := range src.Hap1.TranscriptOrder {
		for _, m := range src.Hap1.Transcripts[id].Mutations {
			dst.Hap1.add(m)
		}
	}
	for _, id := range src.Hap2.TranscriptOrder {
		for _, m := range src.Hap2.Transcripts[id].Mutations {
			dst.Hap2.add(m)
		}
	}
}

// Finalize sorts every transcript's mutation list after all records for a
// sample have been merged in.
func (r *SampleRoute) Finalize() {
	r.Hap1.Sort()
	r.Hap2.Sort()
}

// Package executor implements stage 4b: turning one assembled GIR into
// its result bytes. Three backends produce byte-identical output for the
// same GIR: a single-threaded gather, a sample-parallel multi-threaded
// gather, and a simulated data-parallel (GPU-style) gather that honors
// the kernel error-code contract of spec.md §4.5.
package executor

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppg-tools/ppg/internal/gir"
)

// ExecuteST runs the single-threaded CPU backend: a plain loop over
// tasks in order.
func ExecuteST(g gir.GIR, log *zap.Logger) ([]byte, error) {
	result := make([]byte, g.ResultLen)
	for _, t := range g.Tasks {
		if t.Stream == gir.StreamPhi {
			continue
		}
		if log != nil {
			log.Debug("execute task", zap.Uint8("stream", uint8(t.Stream)), zap.Int("start_in_stream", t.StartInStream), zap.Int("length", t.Length), zap.Int("start_in_result", t.StartInResult))
		}
		src, err := arenaSlice(g, t)
		if err != nil {
			return nil, err
		}
		copy(result[t.StartInResult:t.StartInResult+t.Length], src)
	}
	return result, nil
}

// Sample is one unit of MT dispatch: a sample name paired with its two
// haplotype GIRs.
type Sample struct {
	Name string
	Hap1 gir.GIR
	Hap2 gir.GIR
}

// SampleResult is one sample's executed output.
type SampleResult struct {
	Name      string
	Hap1Bytes []byte
	Hap2Bytes []byte
}

// ExecuteMT parallelizes across samples — never across the tasks of a
// single GIR, which are fine-grained and memcpy-bound (spec.md §9 design
// notes). workers <= 0 lets errgroup's SetLimit default to unlimited.
func ExecuteMT(samples []Sample, workers int, log *zap.Logger) ([]SampleResult, error) {
	results := make([]SampleResult, len(samples))

	g := new(errgroup.Group)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			hap1, err := ExecuteST(s.Hap1, log)
			if err != nil {
				return fmt.Errorf("sample %s haplotype 1: %w", s.Name, err)
			}
			hap2, err := ExecuteST(s.Hap2, log)
			if err != nil {
				return fmt.Errorf("sample %s haplotype 2: %w", s.Name, err)
			}
			results[i] = SampleResult{Name: s.Name, Hap1Bytes: hap1, Hap2Bytes: hap2}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func arenaSlice(g gir.GIR, t gir.Task) ([]byte, error) {
	var arena []byte
	switch t.Stream {
	case gir.StreamRef:
		arena = g.RefArena
	case gir.StreamAlt:
		arena = g.AltArena
	default:
		return nil, fmt.Errorf("unexpected stream %d on non-phi task", t.Stream)
	}
	if t.StartInStream+t.Length > len(arena) {
		return nil, fmt.Errorf("task reads past arena end: start=%d length=%d arena_len=%d", t.StartInStream, t.Length, len(arena))
	}
	return arena[t.StartInStream : t.StartInStream+t.Length], nil
}

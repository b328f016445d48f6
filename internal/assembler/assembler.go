// Package assembler implements stage 4a: folding a haplotype's ordered
// list of per-transcript GIR fragments into one consolidated GIR whose
// tasks reference a single pair of arenas. See spec.md §4.4.
package assembler

import "github.com/ppg-tools/ppg/internal/gir"

// Assemble consolidates fragments (in arrival order) into one GIR. Each
// fragment's tasks are copied with their stream offsets shifted by the
// running ref/alt arena cursors and their result offsets shifted by the
// running result cursor; annotations are recorded per transcript.
func Assemble(fragments []gir.Fragment) gir.GIR {
	out := gir.GIR{Annotations: make(map[string][2]int)}

	var refOff, altOff, resOff int
	for _, frag := range fragments {
		out.RefArena = append(out.RefArena, frag.RefArena...)
		out.AltArena = append(out.AltArena, frag.AltArena...)

		for _, t := range frag.Tasks {
			shifted := t
			switch t.Stream {
			case gir.StreamRef:
				shifted.StartInStream += refOff
			case gir.StreamAlt:
				shifted.StartInStream += altOff
			}
			shifted.StartInResult += resOff
			out.Tasks = append(out.Tasks, shifted)
		}

		out.Annotations[frag.TranscriptID] = [2]int{resOff, resOff + frag.ResultLength}

		refOff += len(frag.RefArena)
		altOff += len(frag.AltArena)
		resOff += frag.ResultLength
	}

	out.ResultLen = resOff
	return out
}

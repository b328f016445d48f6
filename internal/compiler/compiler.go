// Package compiler implements stage 3, the transcript compiler: given a
// sorted list of mutations on one transcript and that transcript's
// reference protein length, it lowers each mutation to an Instruction
// (the opcode alphabet of spec.md §3), predicts the exact edited length,
// and emits a GIR fragment of Tasks plus ref/alt arenas. See spec.md §4.3.
package compiler

import (
	"fmt"

	"github.com/ppg-tools/ppg/internal/diagnostics"
	"github.com/ppg-tools/ppg/internal/gir"
	"github.com/ppg-tools/ppg/internal/mutation"
	"github.com/ppg-tools/ppg/internal/router"
)

// terminal lists the opcodes that consume the rest of the reference (or
// otherwise end useful editing): no terminal reference copy follows them,
// per Step C.4.
var terminal = map[byte]bool{
	'K': true, 'Y': true, 'Q': true, 'A': true, 'B': true, 'P': true,
	'Z': true, 'T': true, 'W': true, 'G': true, 'F': true, 'R': true,
	'L': true, 'X': true,
}

// Instruction is the Step A output: one opcode with its operand and
// positional data, ready for Step B sizing and Step C emission.
type Instruction struct {
	Opcode   byte
	RefPos   int    // 0-based reference position the edit starts at
	Payload  string // bytes appended to the alt arena; empty when Phi or truncating
	Consumed int    // reference residues this instruction consumes before the bridge
	Phi      bool
}

// Compile lowers one transcript's sorted mutation list into a GIR
// fragment. refSeq is the transcript's reference protein sequence;
// L = len(refSeq).
func Compile(at router.AltTranscript, refSeq string, diag diagnostics.DiagConfig) (gir.Fragment, error) {
	L := len(refSeq)

	instructions, err := lowerAll(at.Mutations, L)
	if err != nil {
		return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: err.Error()}
	}

	if err := validateTerminalLast(instructions); err != nil {
		return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: err.Error()}
	}

	if diag.InspectInsGen {
		if warn, fatal := detectOverlaps(instructions); warn != "" {
			if fatal || diag.PanicInspectErr {
				return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: "mutation overlap", Context: warn}
			}
			return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: "mutation overlap (skipped)", Context: warn}
		}
	}

	predictedLen, collapsed, err := predictLength(instructions, L)
	if err != nil {
		return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: err.Error()}
	}

	if collapsed {
		return gir.Fragment{
			TranscriptID: at.TranscriptID,
			Tasks:        nil,
			RefArena:     nil,
			AltArena:     nil,
			ResultLength: 0,
		}, nil
	}

	tasks, refArena, altArena, err := emit(instructions, refSeq, L, predictedLen)
	if err != nil {
		return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: err.Error()}
	}

	frag := gir.Fragment{
		TranscriptID: at.TranscriptID,
		Tasks:        tasks,
		RefArena:     refArena,
		AltArena:     altArena,
		ResultLength: predictedLen,
	}

	if diag.InspectTxp {
		if err := checkDensity(frag); err != nil {
			return gir.Fragment{}, &TranscriptFailure{TranscriptID: at.TranscriptID, Reason: "invariant check failed", Context: err.Error()}
		}
	}

	return frag, nil
}

// checkDensity implements Step D: cumulative non-phi task length must
// equal the predicted result length, and tasks must be gap-free in
// result-buffer order.
func checkDensity(f gir.Fragment) error {
	expected := 0
	for _, t := range f.Tasks {
		if t.Stream == gir.StreamPhi {
			continue
		}
		if t.StartInResult != expected {
			return fmt.Errorf("gap in result buffer at offset %d (task starts at %d)", expected, t.StartInResult)
		}
		expected += t.Length
	}
	if expected != f.ResultLength {
		return fmt.Errorf("cumulative task length %d does not match predicted result length %d", expected, f.ResultLength)
	}
	return nil
}

// validateTerminalLast enforces that a terminal opcode (one that consumes
// the rest of the reference) is always the last instruction that emits
// real content. An asterisk-suppressed 'E' placeholder may still follow it
// — it is phi and contributes nothing — but any other instruction after a
// terminal one is a semantic error, unconditionally (not gated behind any
// diagnostics flag).
func validateTerminalLast(instrs []Instruction) error {
	seen := -1
	for i, instr := range instrs {
		if seen >= 0 && instr.Opcode != 'E' {
			return fmt.Errorf("terminal instruction %q at ref_pos %d is not last: instruction %q at ref_pos %d follows it",
				instrs[seen].Opcode, instrs[seen].RefPos, instr.Opcode, instr.RefPos)
		}
		if terminal[instr.Opcode] {
			seen = i
		}
	}
	return nil
}

// detectOverlaps implements Step E over adjacent instruction pairs: flags
// (a) two instructions sharing a reference position with different
// payloads, (b) an instruction starting strictly inside the reference span
// the preceding instruction consumes (for a deletion, its whole reference
// side). A pair whose preceding instruction is phi is not checked. Returns
// a non-empty warning string plus whether the finding should be treated
// as fatal regardless of PanicInspectErr (always false here; escalation
// is the caller's decision per diag.PanicInspectErr).
func detectOverlaps(instrs []Instruction) (warning string, fatal bool) {
	for i := 1; i < len(instrs); i++ {
		prev, cur := instrs[i-1], instrs[i]
		if prev.Phi {
			continue
		}
		if cur.RefPos == prev.RefPos && cur.Payload != prev.Payload {
			return fmt.Sprintf("instructions at ref_pos %d disagree on payload (%q vs %q)", cur.RefPos, prev.Payload, cur.Payload), false
		}
		if prev.Consumed > 0 && cur.RefPos > prev.RefPos && cur.RefPos < prev.RefPos+prev.Consumed {
			return fmt.Sprintf("instruction at ref_pos %d starts inside the edit span of the instruction at ref_pos %d", cur.RefPos, prev.RefPos), false
		}
	}
	return "", false
}

// lowerAll runs Step A over every mutation in order.
func lowerAll(muts []mutation.Mutation, L int) ([]Instruction, error) {
	out := make([]Instruction, 0, len(muts))
	for i, m := range muts {
		instr, err := lower(m, muts[:i], L)
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
	return out, nil
}

// lower implements Step A for one Mutation: asterisk validation, then
// dispatch to the opcode's lowering.
func lower(m mutation.Mutation, earlier []mutation.Mutation, L int) (Instruction, error) {
	if m.Kind.IsStarred() && suppressedByAsterisk(earlier) {
		return Instruction{Opcode: 'E', RefPos: m.RefPos, Phi: true}, nil
	}

	switch m.Kind {
	case mutation.KindMissense:
		return lowerMissense(m, 'M')
	case mutation.KindStarMissense:
		return lowerMissense(m, 'N')
	case mutation.KindInframeInsertion:
		return lowerInsertion(m, 'I')
	case mutation.KindStarInframeInsertion:
		return lowerInsertion(m, 'J')
	case mutation.KindInframeDeletion:
		return lowerDeletion(m, 'D')
	case mutation.KindStarInframeDeletion:
		return lowerDeletion(m, 'C')
	case mutation.KindFrameshift:
		return lowerFrameshift(m, 'F', L)
	case mutation.KindStarFrameshift:
		return lowerFrameshift(m, 'R', L)
	case mutation.KindStopGained:
		return lowerTruncating(m, 'G', L)
	case mutation.KindStarStopGained:
		return lowerTruncating(m, 'X', L)
	case mutation.KindStopLost:
		return lowerStopLost(m, 'L', L)
	case mutation.KindStartLost:
		return Instruction{Opcode: '0', RefPos: m.RefPos}, nil
	case mutation.KindStartLostSpliceRegion:
		return Instruction{Opcode: 'U', RefPos: m.RefPos}, nil
	case mutation.KindStarMissenseInframeAltering:
		return lowerCompoundFromFrameshift(m, 'K', L)
	case mutation.KindStarFrameshiftStopRetained:
		return lowerCompoundFromFrameshift(m, 'Q', L)
	case mutation.KindStarStopGainedInframeAltering:
		return lowerCompoundFromTruncating(m, 'A', L)
	case mutation.KindFrameshiftStopRetained:
		return lowerFrameshift(m, 'B', L)
	case mutation.KindInframeDeletionStopRetained:
		return lowerCompoundFromTruncating(m, 'P', L)
	case mutation.KindInframeInsertionStopRetained:
		return Instruction{Opcode: 'Z', RefPos: m.RefPos, Phi: true}, nil
	case mutation.KindStopGainedInframeAltering:
		return lowerTruncating(m, 'T', L)
	case mutation.KindStopLostFrameshift:
		return lowerStopLost(m, 'W', L)
	case mutation.KindMissenseInframeAltering:
		return lowerSynthetic(m, 'Y', L)
	default:
		return Instruction{}, fmt.Errorf("unlowerable mutation kind %q", m.Kind)
	}
}

// suppressedByAsterisk implements validate_asterisk: an earlier
// stop_gained/*stop_gained/frameshift, or an earlier inframe
// insertion/deletion whose mutant side is NotSeq, suppresses every
// asterisk-form mutation that follows it.
func suppressedByAsterisk(earlier []mutation.Mutation) bool {
	for _, m := range earlier {
		switch m.Kind {
		case mutation.KindStopGained, mutation.KindStarStopGained, mutation.KindFrameshift:
			return true
		case mutation.KindInframeInsertion, mutation.KindStarInframeInsertion,
			mutation.KindInframeDeletion, mutation.KindStarInframeDeletion:
			if m.MutAA.Tag == mutation.TagNotSeq {
				return true
			}
		}
	}
	return false
}

func lowerMissense(m mutation.Mutation, op byte) (Instruction, error) {
	payload := m.MutAA.Payload()
	if m.RefAA.Len() != 1 || m.MutAA.Len() != 1 {
		// Data doesn't match the canonical 1aa->1aa missense shape;
		// fall back to the generic substitution opcodes.
		if len(payload) == m.RefAA.Len() {
			return lowerGenericSubstitution(m, '2')
		}
		return lowerGenericSubstitution(m, '3')
	}
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: payload, Consumed: 1}, nil
}

func lowerGenericSubstitution(m mutation.Mutation, op byte) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: m.RefAA.Len()}, nil
}

func lowerInsertion(m mutation.Mutation, op byte) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: 1}, nil
}

func lowerDeletion(m mutation.Mutation, op byte) (Instruction, error) {
	k := m.RefAA.Len()
	if k == 0 {
		return Instruction{}, fmt.Errorf("deletion at ref_pos %d carries an empty reference side", m.RefPos)
	}
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: k}, nil
}

func lowerFrameshift(m mutation.Mutation, op byte, L int) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: L - m.RefPos}, nil
}

func lowerTruncating(m mutation.Mutation, op byte, L int) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Phi: true, Consumed: L - m.RefPos}, nil
}

func lowerStopLost(m mutation.Mutation, op byte, L int) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: L - m.RefPos}, nil
}

func lowerSynthetic(m mutation.Mutation, op byte, L int) (Instruction, error) {
	return Instruction{Opcode: op, RefPos: m.RefPos, Payload: m.MutAA.Payload(), Consumed: L - m.RefPos}, nil
}

// lowerCompoundFromFrameshift models "re-use the *frameshift lowering,
// then rewrite the opcode" for K (from *missense&inframe_altering) and Q
// (from *frameshift&stop_retained): both carry the frameshift's operand
// shape, just a different final tag for Step B/C dispatch.
func lowerCompoundFromFrameshift(m mutation.Mutation, finalOp byte, L int) (Instruction, error) {
	instr, err := lowerFrameshift(m, finalOp, L)
	return instr, err
}

// lowerCompoundFromTruncating mirrors lowerCompoundFromFrameshift for the
// stop_gained-shaped compounds A and P.
func lowerCompoundFromTruncating(m mutation.Mutation, finalOp byte, L int) (Instruction, error) {
	return lowerTruncating(m, finalOp, L)
}

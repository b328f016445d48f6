package compiler

import "github.com/ppg-tools/ppg/internal/gir"

// emit implements Step C: stream instructions into Tasks against a
// reference sequence (read directly, stream 0) and a freshly built
// alternative arena (stream 1). refSeq bytes are used as the ref arena
// verbatim so stream offsets equal byte offsets into refSeq.
func emit(instrs []Instruction, refSeq string, L int, predictedLen int) ([]gir.Task, []byte, []byte, error) {
	refArena := []byte(refSeq)
	var altArena []byte
	var tasks []gir.Task

	altEnd := 0
	resEnd := 0

	if len(instrs) == 0 {
		if L > 0 {
			tasks = append(tasks, gir.Task{Stream: gir.StreamRef, StartInStream: 0, Length: L, StartInResult: 0})
		}
		return tasks, refArena, altArena, nil
	}

	// Base task: the untouched reference head before the first instruction.
	k := instrs[0].RefPos
	switch instrs[0].Opcode {
	case 'Z', 'Y', 'L':
		if instrs[0].RefPos+1 == L {
			k = instrs[0].RefPos + 1
		} else if instrs[0].Opcode == 'L' && instrs[0].RefPos == L {
			k = instrs[0].RefPos
		}
	}
	if k > 0 {
		tasks = append(tasks, gir.Task{Stream: gir.StreamRef, StartInStream: 0, Length: k, StartInResult: 0})
		resEnd = k
	}
	refCursor := k
	truncated := false

	for i, instr := range instrs {
		if truncated {
			// A prior instruction already consumed the rest of the
			// reference (terminal opcode). validateTerminalLast guarantees
			// only an asterisk-suppressed E can follow it, which is phi
			// and contributes no further bytes.
			continue
		}

		if instr.RefPos > refCursor {
			// A gap between the previous bridge end and this
			// instruction's position; close it with a reference copy.
			gapLen := instr.RefPos - refCursor
			tasks = append(tasks, gir.Task{Stream: gir.StreamRef, StartInStream: refCursor, Length: gapLen, StartInResult: resEnd})
			resEnd += gapLen
			refCursor = instr.RefPos
		}

		if instr.Phi {
			tasks = append(tasks, gir.Task{Stream: gir.StreamPhi, StartInStream: instr.RefPos, Length: 0, StartInResult: resEnd})
		} else if len(instr.Payload) > 0 {
			start := altEnd
			altArena = append(altArena, instr.Payload...)
			altEnd += len(instr.Payload)
			tasks = append(tasks, gir.Task{Stream: gir.StreamAlt, StartInStream: start, Length: len(instr.Payload), StartInResult: resEnd})
			resEnd += len(instr.Payload)
		}

		refCursor = instr.RefPos + instr.Consumed

		if terminal[instr.Opcode] {
			// Truncating/terminating opcodes consume the rest of the
			// reference implicitly; nothing more is emitted for this
			// instruction or after it, per Step C.4.
			truncated = true
			continue
		}

		// Bridge to the next instruction (or to L if this was the last).
		var next int
		if i+1 < len(instrs) {
			next = instrs[i+1].RefPos
			if next == instr.RefPos {
				// Exact overlap at the same position: bridge is phi.
				continue
			}
		} else {
			next = L
		}
		if next > refCursor {
			bridgeLen := next - refCursor
			tasks = append(tasks, gir.Task{Stream: gir.StreamRef, StartInStream: refCursor, Length: bridgeLen, StartInResult: resEnd})
			resEnd += bridgeLen
			refCursor = next
		}
	}

	if !truncated && refCursor < L {
		tailLen := L - refCursor
		tasks = append(tasks, gir.Task{Stream: gir.StreamRef, StartInStream: refCursor, Length: tailLen, StartInResult: resEnd})
		resEnd += tailLen
	}

	_ = predictedLen // cross-checked by the caller's Step D invariant pass
	return tasks, refArena, altArena, nil
}

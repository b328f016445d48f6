package compiler

import "fmt"

// predictLength implements Step B: walk the instruction list accumulating
// signed deltas against the reference length L to get the exact edited
// length L'. Returns collapsed=true when a start-lost instruction is
// present, per the "Start-lost collapse" testable property (spec.md §8).
func predictLength(instrs []Instruction, L int) (length int, collapsed bool, err error) {
	length = L
	sawTruncation := false // true once a G or F instruction has fired

	for _, instr := range instrs {
		if instr.Phi && instr.Opcode != 'A' && instr.Opcode != 'T' && instr.Opcode != 'G' && instr.Opcode != 'X' && instr.Opcode != 'Z' && instr.Opcode != 'P' {
			// asterisk-suppressed (E) or other phi forms contribute
			// nothing and do not affect the truncation predicate.
			continue
		}
		switch instr.Opcode {
		case '0', 'U':
			return 0, true, nil
		case 'M', 'N', '2':
			// 0
		case 'I':
			length += len(instr.Payload) - 1
		case 'J', 'C', 'K', 'Q', 'A':
			if !sawTruncation {
				length += deltaLikeBase(instr)
			}
		case 'D':
			length -= instr.Consumed - len(instr.Payload)
		case 'F':
			length += len(instr.Payload) - instr.Consumed
			sawTruncation = true
		case 'R':
			if !sawTruncation {
				length += len(instr.Payload) - instr.Consumed
			}
		case 'G':
			length -= instr.Consumed
			sawTruncation = true
		case 'X', 'T':
			length -= instr.Consumed
		case 'L':
			if instr.RefPos+1 == L {
				length += len(instr.Payload)
			} else {
				length += len(instr.Payload) - instr.Consumed
			}
		case 'B':
			length -= instr.Consumed - len(instr.Payload)
		case 'P':
			length -= instr.Consumed
		case 'Z':
			// 0
		case 'W':
			length += len(instr.Payload)
		case 'Y':
			length += len(instr.Payload) - instr.Consumed + 1
		case '3':
			length += len(instr.Payload) - instr.Consumed
		case 'E':
			// asterisk-suppressed; contributes nothing
		default:
			return 0, false, fmt.Errorf("unknown opcode %q in size prediction", instr.Opcode)
		}
	}
	if length < 0 {
		return 0, false, fmt.Errorf("predicted negative result length %d", length)
	}
	return length, false, nil
}

// deltaLikeBase computes the delta for J/C/K/Q/A, which share the "same
// as base, but only if no prior G or F" predicate (spec.md §4.3 Step B).
// K and Q are frameshift-shaped (Consumed = L - ref_pos), A is
// stop_gained-shaped (Consumed = L - ref_pos, empty payload), J is
// insertion-shaped (Consumed = 1), and C is deletion-shaped (Consumed = k,
// the deleted residue count). For all but C the delta is
// len(payload) - Consumed, which matches each of those lowerings.
func deltaLikeBase(instr Instruction) int {
	switch instr.Opcode {
	case 'C':
		return -(instr.Consumed - len(instr.Payload))
	default: // J, K, Q, A
		return len(instr.Payload) - instr.Consumed
	}
}

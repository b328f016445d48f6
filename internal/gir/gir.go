// Package gir implements the Genomic Intermediate Representation: a flat,
// position-indexed task list plus two small byte arenas whose execution
// is a pure gather. See spec.md §3/§4.4 for the data model this mirrors.
package gir

// Stream identifies which arena a Task's bytes are copied from.
type Stream uint8

const (
	StreamRef Stream = 0
	StreamAlt Stream = 1
	StreamPhi Stream = 2
)

// Task is one slice-copy instruction:
//
//	result[StartInResult : StartInResult+Length] = stream[StartInStream : StartInStream+Length]
//
// Phi tasks (Stream == StreamPhi) are never executed; they are
// placeholders retained from compilation for bookkeeping and are skipped
// by every executor backend.
type Task struct {
	Stream        Stream
	StartInStream int
	Length        int
	StartInResult int
}

// Fragment is one transcript's compiled output: its own task list and
// the slice of the reference/alternative arenas it references, plus the
// annotation span it will occupy once assembled into a haplotype GIR.
// Offsets inside Tasks are relative to Fragment's own RefArena/AltArena
// until the assembler re-indexes them (see internal/assembler).
type Fragment struct {
	TranscriptID string
	Tasks        []Task
	RefArena     []byte
	AltArena     []byte
	ResultLength int
}

// GIR is one haplotype's fully assembled bytecode: a dense, gap-free task
// list over a single pair of consolidated arenas, ready for execution.
type GIR struct {
	Tasks       []Task
	Annotations map[string][2]int // transcript_id -> (start, end) in ResultBuffer
	RefArena    []byte
	AltArena    []byte
	ResultLen   int
}

// NonPhiLength returns the sum of non-phi task lengths, which by
// invariant 3 (spec.md §3) must equal ResultLen.
func (g *GIR) NonPhiLength() int {
	total := 0
	for _, t := range g.Tasks {
		if t.Stream != StreamPhi {
			total += t.Length
		}
	}
	return total
}

// IsDense reports whether tasks are gap-free and in result-buffer order
// (invariant 2): task[i].StartInResult == task[i-1].StartInResult + task[i-1].Length,
// counting only non-phi tasks (phi tasks carry no result-buffer footprint).
func (g *GIR) IsDense() bool {
	expected := 0
	for _, t := range g.Tasks {
		if t.Stream == StreamPhi {
			continue
		}
		if t.StartInResult != expected {
			return false
		}
		expected += t.Length
	}
	return true
}

// arenaOf returns the stream arena a task with the given Stream reads from.
func (g *GIR) arenaOf(s Stream) []byte {
	switch s {
	case StreamRef:
		return g.RefArena
	case StreamAlt:
		return g.AltArena
	default:
		return nil
	}
}

// WithinArenaBounds checks invariant 1 for a single task against the
// owning GIR's arenas and result buffer length.
func (g *GIR) WithinArenaBounds(t Task) bool {
	if t.Stream == StreamPhi {
		return true
	}
	arena := g.arenaOf(t.Stream)
	if t.StartInStream+t.Length > len(arena) {
		return false
	}
	if t.StartInResult+t.Length > g.ResultLen {
		return false
	}
	return true
}

package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppg-tools/ppg/internal/gir"
)

func TestAssemble_OffsetsAndAnnotations(t *testing.T) {
	fragA := gir.Fragment{
		TranscriptID: "ENST1",
		RefArena:     []byte("ABCDE"),
		AltArena:     []byte("XY"),
		ResultLength: 5,
		Tasks: []gir.Task{
			{Stream: gir.StreamRef, StartInStream: 0, Length: 2, StartInResult: 0},
			{Stream: gir.StreamAlt, StartInStream: 0, Length: 2, StartInResult: 2},
			{Stream: gir.StreamRef, StartInStream: 2, Length: 1, StartInResult: 4},
		},
	}
	fragB := gir.Fragment{
		TranscriptID: "ENST2",
		RefArena:     []byte("FGH"),
		AltArena:     nil,
		ResultLength: 3,
		Tasks: []gir.Task{
			{Stream: gir.StreamRef, StartInStream: 0, Length: 3, StartInResult: 0},
		},
	}

	out := Assemble([]gir.Fragment{fragA, fragB})

	assert.Equal(t, "ABCDEFGH", string(out.RefArena))
	assert.Equal(t, "XY", string(out.AltArena))
	assert.Equal(t, 8, out.ResultLen)
	assert.Equal(t, [2]int{0, 5}, out.Annotations["ENST1"])
	assert.Equal(t, [2]int{5, 8}, out.Annotations["ENST2"])

	// fragB's single task should have its ref offset shifted past fragA's
	// ref arena (len 5) and its result offset shifted past fragA's result
	// length (5).
	last := out.Tasks[len(out.Tasks)-1]
	assert.Equal(t, gir.StreamRef, last.Stream)
	assert.Equal(t, 5, last.StartInStream)
	assert.Equal(t, 5, last.StartInResult)
}

func TestAssemble_StartLostZeroLengthAnnotation(t *testing.T) {
	frag := gir.Fragment{TranscriptID: "ENST1", ResultLength: 0}
	out := Assemble([]gir.Fragment{frag})
	assert.Equal(t, [2]int{0, 0}, out.Annotations["ENST1"])
	assert.Equal(t, 0, out.ResultLen)
}

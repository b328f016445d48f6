package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppg-tools/ppg/internal/diagnostics"
	"github.com/ppg-tools/ppg/internal/gir"
	"github.com/ppg-tools/ppg/internal/mutation"
	"github.com/ppg-tools/ppg/internal/router"
)

const refProtein = "MEDLGENTMVLSTLRSLNNFISQRVEGGSGLEELERGG" // length 38

func mustParse(t *testing.T, bcsq string) mutation.Mutation {
	t.Helper()
	m, err := mutation.ParseBCSQ(bcsq)
	require.NoError(t, err)
	return m
}

// gather replicates the single-threaded executor's gather loop so these
// compiler tests can assert directly on output bytes without importing
// internal/executor.
func gather(refSeq string, frag gir.Fragment) string {
	out := make([]byte, frag.ResultLength)
	for _, task := range frag.Tasks {
		if task.Stream == gir.StreamPhi {
			continue
		}
		var src []byte
		switch task.Stream {
		case gir.StreamRef:
			src = []byte(refSeq)
		case gir.StreamAlt:
			src = frag.AltArena
		}
		copy(out[task.StartInResult:task.StartInResult+task.Length], src[task.StartInStream:task.StartInStream+task.Length])
	}
	return string(out)
}

func TestScenario1_StarMissense(t *testing.T) {
	m := mustParse(t, "*missense|G|ENST1|protein_coding|+|5G>5H|13G>A")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 38, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, 38, len(out))
	assert.Equal(t, byte('H'), out[4])
	for i := 0; i < 38; i++ {
		if i == 4 {
			continue
		}
		assert.Equal(t, refProtein[i], out[i], "position %d", i)
	}
}

func TestScenario2_InframeInsertion(t *testing.T) {
	m := mustParse(t, "inframe_insertion|G|ENST1|protein_coding|+|5G>5GTEST|13G>GTEST")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 42, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein[0:4], out[0:4])
	assert.Equal(t, "GTEST", out[4:9])
	assert.Equal(t, refProtein[5:38], out[9:42])
}

func TestScenario3_Frameshift(t *testing.T) {
	m := mustParse(t, "frameshift|G|ENST1|protein_coding|+|10V>10VTESTFRAMESHIFT|30A>AT")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 24, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein[0:9]+"VTESTFRAMESHIFT", out)
}

func TestScenario4_InframeDeletion(t *testing.T) {
	m := mustParse(t, "inframe_deletion|G|ENST1|protein_coding|+|10VLSTLR>10R|30A>A")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 33, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein[0:9]+"R"+refProtein[15:38], out)
}

func TestScenario5_StopGained(t *testing.T) {
	m := mustParse(t, "stop_gained|G|ENST1|protein_coding|+|37G>37*|111G>T")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 36, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein[0:36], out)
}

func TestScenario6_StopLost(t *testing.T) {
	m := mustParse(t, "stop_lost|G|ENST1|protein_coding|+|39*>39TEST|117G>GACTGAGCACT")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 42, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein[0:38]+"TEST", out)
}

func TestScenario8_StartLostCollapse(t *testing.T) {
	m := mustParse(t, "start_lost|G|ENST1|protein_coding")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, frag.ResultLength)
	assert.Empty(t, frag.Tasks)
}

func TestNoMutations_PassthroughCopy(t *testing.T) {
	at := router.AltTranscript{TranscriptID: "ENST1"}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	assert.Equal(t, 38, frag.ResultLength)
	out := gather(refProtein, frag)
	assert.Equal(t, refProtein, out)
}

func TestDuplicateRefPos_SkippedUnderInspection(t *testing.T) {
	m1 := mustParse(t, "missense|G|ENST1|protein_coding|+|5G>5H|13G>A")
	m2 := mustParse(t, "missense|G|ENST1|protein_coding|+|5G>5Q|13G>C")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{m1, m2}}
	_, err := Compile(at, refProtein, diagnostics.DiagConfig{InspectInsGen: true})
	require.Error(t, err)
}

func TestStarredFormSuppressedByEarlierStopGained(t *testing.T) {
	stop := mustParse(t, "stop_gained|G|ENST1|protein_coding|+|10G>10*|30G>T")
	star := mustParse(t, "*missense|G|ENST1|protein_coding|+|20G>20H|60G>A")
	at := router.AltTranscript{TranscriptID: "ENST1", Mutations: []mutation.Mutation{stop, star}}
	frag, err := Compile(at, refProtein, diagnostics.DiagConfig{})
	require.NoError(t, err)
	// Only the stop_gained's truncation should affect length; the
	// suppressed *missense contributes nothing.
	assert.Equal(t, 9, frag.ResultLength)
}

// Package mutation holds the typed representation of a single protein
// consequence call (a BCSQ entry) and the closed taxonomy of variant
// kinds and opcodes it lowers to.
package mutation

import "fmt"

// Kind identifies one of the 22 supported BCSQ consequence strings.
// The order matches the original prototype's fixed reporting order
// (see SPEC_FULL.md §9.2) so that report columns and iteration are
// stable across the codebase.
type Kind string

const (
	KindMissense                      Kind = "missense"
	KindStarMissense                  Kind = "*missense"
	KindFrameshift                    Kind = "frameshift"
	KindStarFrameshift                Kind = "*frameshift"
	KindInframeInsertion              Kind = "inframe_insertion"
	KindStarInframeInsertion          Kind = "*inframe_insertion"
	KindInframeDeletion               Kind = "inframe_deletion"
	KindStarInframeDeletion           Kind = "*inframe_deletion"
	KindStopGained                    Kind = "stop_gained"
	KindStopLost                      Kind = "stop_lost"
	KindStarMissenseInframeAltering   Kind = "*missense&inframe_altering"
	KindStarFrameshiftStopRetained    Kind = "*frameshift&stop_retained"
	KindStarStopGainedInframeAltering Kind = "*stop_gained&inframe_altering"
	KindFrameshiftStopRetained        Kind = "frameshift&stop_retained"
	KindInframeDeletionStopRetained   Kind = "inframe_deletion&stop_retained"
	KindInframeInsertionStopRetained  Kind = "inframe_insertion&stop_retained"
	KindStopGainedInframeAltering     Kind = "stop_gained&inframe_altering"
	KindStartLost                     Kind = "start_lost"
	KindStarStopGained                Kind = "*stop_gained"
	KindStopLostFrameshift            Kind = "stop_lost&frameshift"
	KindMissenseInframeAltering       Kind = "missense&inframe_altering"
	KindStartLostSpliceRegion         Kind = "start_lost&splice_region"
)

// Kinds lists the 22 supported kinds in fixed reporting order.
var Kinds = []Kind{
	KindMissense, KindStarMissense,
	KindFrameshift, KindStarFrameshift,
	KindInframeInsertion, KindStarInframeInsertion,
	KindInframeDeletion, KindStarInframeDeletion,
	KindStopGained, KindStopLost,
	KindStarMissenseInframeAltering, KindStarFrameshiftStopRetained,
	KindStarStopGainedInframeAltering, KindFrameshiftStopRetained,
	KindInframeDeletionStopRetained, KindInframeInsertionStopRetained,
	KindStopGainedInframeAltering, KindStartLost,
	KindStarStopGained, KindStopLostFrameshift,
	KindMissenseInframeAltering, KindStartLostSpliceRegion,
}

// IsStarred reports whether the kind is a "downstream of earlier nonsense"
// asterisk form.
func (k Kind) IsStarred() bool {
	switch k {
	case KindStarMissense, KindStarFrameshift, KindStarInframeInsertion,
		KindStarInframeDeletion, KindStarMissenseInframeAltering,
		KindStarFrameshiftStopRetained, KindStarStopGainedInframeAltering,
		KindStarStopGained:
		return true
	default:
		return false
	}
}

// ParseKind maps a raw BCSQ kind token to a Kind. Unsupported strings
// return ok=false so the caller can drop the record per spec.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SeqTag distinguishes the three shapes a MutatedString can take.
type SeqTag int

const (
	TagSequence SeqTag = iota
	TagEndSequence
	TagNotSeq
)

// MutatedString is the amino-acid payload of one side (ref or mut) of a
// variant. NotSeq represents the literal "*" (stop codon, no residues).
// EndSequence is a sequence ending in "*" (a de-novo stop downstream of
// new residues, as produced by frameshifts).
type MutatedString struct {
	Tag SeqTag
	Seq string // empty when Tag == TagNotSeq
}

// ParseMutatedString tokenizes the non-positional residue portion of one
// side of a BCSQ aa_change sub-field.
func ParseMutatedString(s string) (MutatedString, error) {
	if s == "" {
		return MutatedString{}, fmt.Errorf("empty amino-acid sequence")
	}
	if s == "*" {
		return MutatedString{Tag: TagNotSeq}, nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '*' {
			return MutatedString{Tag: TagEndSequence, Seq: s}, nil
		}
	}
	return MutatedString{Tag: TagSequence, Seq: s}, nil
}

// Payload returns the residue bytes carried by the MutatedString (empty
// for NotSeq).
func (m MutatedString) Payload() string {
	if m.Tag == TagNotSeq {
		return ""
	}
	return m.Seq
}

// Len returns the number of amino-acid residues carried (0 for NotSeq).
func (m MutatedString) Len() int {
	return len(m.Payload())
}

// Mutation is the stage-1 output: one typed, positioned protein edit on
// one transcript.
type Mutation struct {
	Kind         Kind
	TranscriptID string
	RefPos       int // 0-based, as stored (source is 1-based)
	MutPos       int // 0-based
	RefAA        MutatedString
	MutAA        MutatedString
}

// ByRefPos sorts mutations by ascending reference position, per spec.md
// §3 "Ordering: by ref_pos ascending; equality on mut_pos".
type ByRefPos []Mutation

func (m ByRefPos) Len() int      { return len(m) }
func (m ByRefPos) Swap(i, j int) { m[i], m[j] = m[j], m[i] }
func (m ByRefPos) Less(i, j int) bool {
	if m[i].RefPos != m[j].RefPos {
		return m[i].RefPos < m[j].RefPos
	}
	return m[i].MutPos < m[j].MutPos
}

package compiler

import "github.com/ppg-tools/ppg/internal/mutation"

// kindOpcode maps each of the 22 supported kinds to the opcode its
// lowering normally produces. Used by report wiring to log provenance
// without re-running Step A. Missense's runtime fallback to the generic
// substitution opcodes ('2'/'3') when the amino-acid sides aren't both
// single residues is intentionally not reflected here — that fallback
// is a data-shape exception, not the kind's identity.
var kindOpcode = map[mutation.Kind]byte{
	mutation.KindMissense:                      'M',
	mutation.KindStarMissense:                  'N',
	mutation.KindFrameshift:                    'F',
	mutation.KindStarFrameshift:                'R',
	mutation.KindInframeInsertion:              'I',
	mutation.KindStarInframeInsertion:          'J',
	mutation.KindInframeDeletion:               'D',
	mutation.KindStarInframeDeletion:           'C',
	mutation.KindStopGained:                    'G',
	mutation.KindStopLost:                      'L',
	mutation.KindStarMissenseInframeAltering:   'K',
	mutation.KindStarFrameshiftStopRetained:    'Q',
	mutation.KindStarStopGainedInframeAltering: 'A',
	mutation.KindFrameshiftStopRetained:        'B',
	mutation.KindInframeDeletionStopRetained:   'P',
	mutation.KindInframeInsertionStopRetained:  'Z',
	mutation.KindStopGainedInframeAltering:     'T',
	mutation.KindStartLost:                     '0',
	mutation.KindStarStopGained:                'X',
	mutation.KindStopLostFrameshift:            'W',
	mutation.KindMissenseInframeAltering:       'Y',
	mutation.KindStartLostSpliceRegion:         'U',
}

// KindOpcode returns the opcode normally associated with kind, or 0 if
// kind is not one of the 22 supported kinds.
func KindOpcode(k mutation.Kind) byte {
	return kindOpcode[k]
}

package mutation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports a malformed BCSQ field. A ParseError is always
// recoverable: the caller skips the single Mutation and continues.
type ParseError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bcsq parse error on %q: %s", e.Field, e.Message)
}

// reAAChangeSide matches a leading 1-based decimal position followed by
// amino-acid letters and/or '*'.
var reAAChangeSide = regexp.MustCompile(`^(\d+)([A-Za-z*]*)$`)

// ParseBCSQ parses one pipe-delimited BCSQ field into a Mutation.
//
// Expected shape: kind|gene|transcript|biotype|strand|aa_change|dna_change
// (7 fields), except start_lost records which arrive with only 4 fields;
// ParseBCSQ synthesizes "1M>1*" for those before proceeding.
func ParseBCSQ(field string) (Mutation, error) {
	parts := strings.Split(field, "|")

	isStartLostShortForm := len(parts) == 4 && parts[0] == string(KindStartLost)
	if !isStartLostShortForm && len(parts) != 7 {
		return Mutation{}, &ParseError{Field: field, Message: fmt.Sprintf("expected 7 fields (or 4 for start_lost), found %d", len(parts))}
	}

	kind, ok := ParseKind(parts[0])
	if !ok {
		return Mutation{}, &ParseError{Field: field, Message: fmt.Sprintf("unsupported consequence kind %q", parts[0])}
	}

	biotype := parts[3]
	aaChange := parts[5]
	if isStartLostShortForm {
		biotype = parts[3]
		aaChange = "1M>1*"
	}

	if biotype != "protein_coding" {
		return Mutation{}, &ParseError{Field: field, Message: fmt.Sprintf("unsupported biotype %q", biotype)}
	}

	refPos, refAA, mutPos, mutAA, err := parseAAChange(aaChange)
	if err != nil {
		return Mutation{}, &ParseError{Field: field, Message: err.Error()}
	}

	return Mutation{
		Kind:         kind,
		TranscriptID: parts[2],
		RefPos:       refPos - 1, // store 0-based
		MutPos:       mutPos - 1,
		RefAA:        refAA,
		MutAA:        mutAA,
	}, nil
}

// parseAAChange splits "ref_side>mut_side" and tokenizes each side into a
// 1-based position plus a MutatedString.
func parseAAChange(aaChange string) (refPos int, refAA MutatedString, mutPos int, mutAA MutatedString, err error) {
	idx := strings.IndexByte(aaChange, '>')
	if idx < 0 {
		err = fmt.Errorf("missing '>' separator in aa_change %q", aaChange)
		return
	}
	refSide, mutSide := aaChange[:idx], aaChange[idx+1:]
	if refSide == "" && mutSide == "" {
		err = fmt.Errorf("both sides of aa_change %q are empty", aaChange)
		return
	}

	refPos, refAA, err = parseAAChangeSide(refSide)
	if err != nil {
		return
	}
	mutPos, mutAA, err = parseAAChangeSide(mutSide)
	if err != nil {
		return
	}
	return
}

func parseAAChangeSide(side string) (int, MutatedString, error) {
	m := reAAChangeSide.FindStringSubmatch(side)
	if m == nil {
		return 0, MutatedString{}, fmt.Errorf("cannot parse position/sequence from %q", side)
	}
	pos, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, MutatedString{}, fmt.Errorf("invalid position %q", m[1])
	}
	seq := m[2]
	if seq == "" {
		seq = "*"
	}
	mutated, err := ParseMutatedString(seq)
	if err != nil {
		return 0, MutatedString{}, err
	}
	return pos, mutated, nil
}

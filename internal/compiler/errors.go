package compiler

import "fmt"

// TranscriptFailure reports why one transcript's compile was abandoned.
// Per spec.md §4.3 "Failure semantics", this is always non-fatal to the
// caller: the transcript is skipped and the remaining transcripts of the
// same (sample, haplotype) proceed.
type TranscriptFailure struct {
	TranscriptID string
	Reason       string
	Context      string
}

func (e *TranscriptFailure) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("transcript %s: %s", e.TranscriptID, e.Reason)
	}
	return fmt.Sprintf("transcript %s: %s (%s)", e.TranscriptID, e.Reason, e.Context)
}

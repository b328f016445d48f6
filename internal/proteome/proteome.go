// Package proteome loads the reference protein sequences the compiler
// edits against: one amino-acid sequence per transcript, read from a
// plain (optionally gzipped) FASTA file. Adapted from the VEP cache's
// FASTA loader, with the CDS/UTR sub-range parsing dropped since this
// file's records are already whole protein sequences, not CDS nucleotide
// windows.
package proteome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reference holds every transcript's reference protein sequence, indexed
// by transcript ID with a fallback from unversioned to versioned IDs
// (e.g. "ENST00000311936" -> "ENST00000311936.8").
type Reference struct {
	sequences  map[string]string
	baseToFull map[string]string
}

// Load reads a FASTA file (gzip-transparent by file extension) of
// reference protein sequences.
func Load(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proteome FASTA: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return parse(reader)
}

func parse(reader io.Reader) (*Reference, error) {
	ref := &Reference{
		sequences:  make(map[string]string),
		baseToFull: make(map[string]string),
	}

	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentID string
	var currentSeq strings.Builder

	flush := func() {
		if currentID != "" {
			ref.sequences[currentID] = currentSeq.String()
			if base := stripVersion(currentID); base != currentID {
				ref.baseToFull[base] = currentID
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			currentID = parseHeader(line)
			currentSeq.Reset()
		} else {
			currentSeq.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan proteome FASTA: %w", err)
	}
	return ref, nil
}

// parseHeader extracts the transcript ID from the first pipe- or
// space-delimited token of a FASTA header line.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexByte(header, '|'); idx != -1 {
		return header[:idx]
	}
	if idx := strings.IndexByte(header, ' '); idx != -1 {
		return header[:idx]
	}
	return header
}

func stripVersion(id string) string {
	if idx := strings.LastIndexByte(id, '.'); idx != -1 {
		return id[:idx]
	}
	return id
}

// Get returns a transcript's reference protein sequence, trying an exact
// ID match and falling back to the unversioned form.
func (r *Reference) Get(transcriptID string) (string, bool) {
	if seq, ok := r.sequences[transcriptID]; ok {
		return seq, true
	}
	base := stripVersion(transcriptID)
	if full, ok := r.baseToFull[base]; ok {
		if seq, ok := r.sequences[full]; ok {
			return seq, true
		}
	}
	return "", false
}

// Len returns len(Get(transcriptID)), 0 if not found.
func (r *Reference) Len(transcriptID string) int {
	seq, _ := r.Get(transcriptID)
	return len(seq)
}

// Count returns the number of loaded transcript sequences.
func (r *Reference) Count() int {
	return len(r.sequences)
}

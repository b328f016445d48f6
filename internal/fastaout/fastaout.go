// Package fastaout writes one per-sample FASTA file carrying each
// haplotype's edited protein sequence per transcript. Two records per
// transcript (haplotype 1 and 2), line-wrapped at 60 columns following
// the GENCODE/Ensembl convention visible in the reference proteome
// fixtures this module reads (internal/proteome). Adapted from the VEP
// cache's FASTA line-handling conventions, applied on the write side.
package fastaout

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

const wrapWidth = 60

// Record is one haplotype's output sequence for one transcript.
type Record struct {
	TranscriptID string
	Haplotype    int // 1 or 2
	Sequence     string
	Unmodified   bool // true when this haplotype carried no edits for the transcript
}

// Writer writes Records as wrapped FASTA, gzip-compressing when the
// destination path ends in ".gz".
type Writer struct {
	w   *bufio.Writer
	gz  *gzip.Writer
	f   *os.File
}

// Create opens path for writing (truncating any existing file).
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create fasta output %s: %w", path, err)
	}

	var dest io.Writer = f
	wr := &Writer{f: f}
	if strings.HasSuffix(path, ".gz") {
		wr.gz = gzip.NewWriter(f)
		dest = wr.gz
	}
	wr.w = bufio.NewWriter(dest)
	return wr, nil
}

// WriteRecord emits one haplotype record: a ">sampleName_transcriptID_N"
// header (N = haplotype number) followed by the sequence wrapped at 60
// columns.
func (w *Writer) WriteRecord(sampleName string, rec Record) error {
	if _, err := fmt.Fprintf(w.w, ">%s_%s_%d\n", sampleName, rec.TranscriptID, rec.Haplotype); err != nil {
		return err
	}
	for i := 0; i < len(rec.Sequence); i += wrapWidth {
		end := i + wrapWidth
		if end > len(rec.Sequence) {
			end = len(rec.Sequence)
		}
		if _, err := w.w.WriteString(rec.Sequence[i:end]); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered output and closes the underlying file(s).
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	return w.f.Close()
}

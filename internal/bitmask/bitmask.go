// Package bitmask decodes the per-sample haplotype bitmask field carried
// in a VCF genotype column, mapping it to the indices of the comma
// separated CSQ effects that apply to each haplotype. Bit-exact with
// BCF2/bcftools-csq as of commit 1f1e766.
package bitmask

import (
	"fmt"
	"strconv"
	"strings"
)

// effectsPerWord is the number of 2-bit haplotype pairs packed into each
// 32-bit bitmask word (bits 30/31 are unused). See DESIGN.md, open
// question (c): this is load-bearing and must not be "generalized" to 16.
const effectsPerWord = 15

// ErrOutdatedCSQ is returned when a bitmask field carries a negative
// integer, which only appears when stale (pre-1f1e766) bcftools csq
// output is fed to this pipeline.
var ErrOutdatedCSQ = fmt.Errorf("outdated csq: negative bitmask word encountered (see https://github.com/samtools/bcftools/commit/1f1e766)")

// Decode parses a comma-separated bitmask field (e.g. "3,0,1024") into
// the CSQ-list effect indices that apply to haplotype 1 and haplotype 2.
// A "." or empty field means no effect on either haplotype (nil, nil, nil).
func Decode(raw string) (hap1, hap2 []int, err error) {
	if raw == "" || raw == "." {
		return nil, nil, nil
	}

	words, err := parseWords(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(words) == 0 {
		return nil, nil, nil
	}

	for w, word := range words {
		base := effectsPerWord * w
		for i := 0; i < 16 && word != 0; i++ {
			if word&1 == 1 {
				hap1 = append(hap1, base+i)
			}
			if (word>>1)&1 == 1 {
				hap2 = append(hap2, base+i)
			}
			word >>= 2
		}
	}
	return hap1, hap2, nil
}

// parseWords splits the comma list, strips trailing "0" words (a run of
// explicit zero-words at the tail carries no information), and parses
// the remainder as unsigned 32-bit words. A literal negative integer
// anywhere in the list is a hard, fatal error.
func parseWords(raw string) ([]uint32, error) {
	fields := strings.Split(raw, ",")
	for strings.TrimSpace(fields[len(fields)-1]) == "0" {
		fields = fields[:len(fields)-1]
		if len(fields) == 0 {
			return nil, nil
		}
	}

	words := make([]uint32, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if strings.HasPrefix(f, "-") {
			return nil, ErrOutdatedCSQ
		}
		n, convErr := strconv.ParseUint(f, 10, 32)
		if convErr != nil {
			return nil, fmt.Errorf("invalid bitmask word %q: %w", f, convErr)
		}
		words = append(words, uint32(n))
	}
	return words, nil
}

// Encode is the inverse of Decode, used only to assert the round-trip
// invariant: decoding then re-encoding a bitmask word yields the same
// word, modulo trailing-zero stripping. It reconstructs the minimal set
// of 32-bit words needed to cover the given haplotype-1/haplotype-2
// effect indices.
func Encode(hap1, hap2 []int) string {
	maxIdx := -1
	for _, i := range hap1 {
		if i > maxIdx {
			maxIdx = i
		}
	}
	for _, i := range hap2 {
		if i > maxIdx {
			maxIdx = i
		}
	}
	if maxIdx < 0 {
		return "."
	}

	numWords := maxIdx/effectsPerWord + 1
	words := make([]uint32, numWords)
	for _, i := range hap1 {
		w, pos := i/effectsPerWord, i%effectsPerWord
		words[w] |= 1 << uint(2*pos)
	}
	for _, i := range hap2 {
		w, pos := i/effectsPerWord, i%effectsPerWord
		words[w] |= 1 << uint(2*pos+1)
	}

	parts := make([]string, numWords)
	for i, w := range words {
		parts[i] = strconv.FormatUint(uint64(w), 10)
	}
	return strings.Join(parts, ",")
}

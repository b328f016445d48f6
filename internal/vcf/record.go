package vcf

import "strings"

// BCSQEffects returns the comma-separated BCSQ INFO field, split into its
// individual pipe-delimited consequence strings, in CSQ-list order — the
// same order the per-sample bitmask indexes into (internal/bitmask).
func (v *Variant) BCSQEffects() []string {
	raw, ok := v.Info["BCSQ"]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok || s == "" || s == "." {
		return nil
	}
	return strings.Split(s, ",")
}

// SampleBitmask returns the raw bitmask field (internal/bitmask.Decode's
// input) for one sample, given the FORMAT subfield name carrying it
// ("BCSQ" per bcftools/csq convention) and the sample's 0-based index
// among the sample columns.
func (v *Variant) SampleBitmask(formatKey string, sampleIdx int) (string, bool) {
	formatFields := strings.Split(v.Format(), ":")
	keyIdx := -1
	for i, f := range formatFields {
		if f == formatKey {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return "", false
	}

	samplesOnly := v.SamplesOnly()
	if samplesOnly == "" {
		return "", false
	}
	sampleCols := strings.Split(samplesOnly, "\t")
	if sampleIdx < 0 || sampleIdx >= len(sampleCols) {
		return "", false
	}
	subfields := strings.Split(sampleCols[sampleIdx], ":")
	if keyIdx >= len(subfields) {
		return "", false
	}
	return subfields[keyIdx], true
}

// Format returns the FORMAT column of a record, the first tab-delimited
// field of SampleColumns as stored by the parser.
func (v *Variant) Format() string {
	idx := strings.IndexByte(v.SampleColumns, '\t')
	if idx < 0 {
		return v.SampleColumns
	}
	return v.SampleColumns[:idx]
}

// SamplesOnly returns SampleColumns with the leading FORMAT field
// stripped, i.e. just the per-sample genotype columns.
func (v *Variant) SamplesOnly() string {
	idx := strings.IndexByte(v.SampleColumns, '\t')
	if idx < 0 {
		return ""
	}
	return v.SampleColumns[idx+1:]
}

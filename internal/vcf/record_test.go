package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBCSQEffects_SplitsOnComma(t *testing.T) {
	v := &Variant{Info: map[string]interface{}{
		"BCSQ": "missense|G|ENST1|protein_coding|+|5G>5H|13G>A,stop_gained|G|ENST1|protein_coding|+|37G>37*|111G>T",
	}}
	effects := v.BCSQEffects()
	assert.Len(t, effects, 2)
	assert.Contains(t, effects[0], "missense")
	assert.Contains(t, effects[1], "stop_gained")
}

func TestBCSQEffects_AbsentOrDot(t *testing.T) {
	assert.Nil(t, (&Variant{Info: map[string]interface{}{}}).BCSQEffects())
	assert.Nil(t, (&Variant{Info: map[string]interface{}{"BCSQ": "."}}).BCSQEffects())
}

func TestSampleBitmask_LocatesFORMATSubfield(t *testing.T) {
	v := &Variant{SampleColumns: "GT:BCSQ\t0/1:3\t0/0:0"}
	bm, ok := v.SampleBitmask("BCSQ", 0)
	assert.True(t, ok)
	assert.Equal(t, "3", bm)

	bm, ok = v.SampleBitmask("BCSQ", 1)
	assert.True(t, ok)
	assert.Equal(t, "0", bm)
}

func TestSampleBitmask_MissingFormatKey(t *testing.T) {
	v := &Variant{SampleColumns: "GT\t0/1"}
	_, ok := v.SampleBitmask("BCSQ", 0)
	assert.False(t, ok)
}

func TestFormatAndSamplesOnly(t *testing.T) {
	v := &Variant{SampleColumns: "GT:BCSQ\t0/1:3\t0/0:0"}
	assert.Equal(t, "GT:BCSQ", v.Format())
	assert.Equal(t, "0/1:3\t0/0:0", v.SamplesOnly())
}

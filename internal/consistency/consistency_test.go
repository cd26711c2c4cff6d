package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCompanies_ExactAfterNormalization(t *testing.T) {
	cmp := CompareCompanies("Acme Inc", "ACME INC.")
	assert.Equal(t, LabelMatch, cmp.Label)
	assert.Equal(t, 10.0, cmp.Score)
}

func TestCompareCompanies_Different(t *testing.T) {
	cmp := CompareCompanies("Acme Inc", "Globex Corp")
	assert.Equal(t, LabelDifferent, cmp.Label)
	assert.Equal(t, 3.0, cmp.Score)
}

func TestCompareCompanies_Containment(t *testing.T) {
	cmp := CompareCompanies("Acme", "Acme Incorporated")
	assert.Equal(t, LabelLikelyMatch, cmp.Label)
	assert.Equal(t, 8.0, cmp.Score)
}

func TestCompareCompanies_SharedWordsWithLegalSuffix(t *testing.T) {
	cmp := CompareCompanies("Initech Systems Inc", "Initech Systems Ltd")
	assert.Equal(t, LabelLikelyMatch, cmp.Label)
	assert.Equal(t, 8.0, cmp.Score)
}

func TestCompareCompanies_SharedWordsWithoutSuffix(t *testing.T) {
	// Word overlap alone is not enough without a legal-entity token.
	cmp := CompareCompanies("Northern Lights", "Southern Lights")
	assert.Equal(t, LabelDifferent, cmp.Label)
	assert.Equal(t, 3.0, cmp.Score)
}

func TestCompareCompanies_MissingSide(t *testing.T) {
	for _, pair := range [][2]string{{"", "Acme"}, {"Acme", ""}, {"", ""}} {
		cmp := CompareCompanies(pair[0], pair[1])
		assert.Equal(t, LabelUnknown, cmp.Label)
		assert.Equal(t, 5.0, cmp.Score)
	}
}

func TestNormalizeCompany(t *testing.T) {
	assert.Equal(t, "acme inc", normalizeCompany("  ACME, Inc.  "))
	assert.Equal(t, "oreilly media", normalizeCompany("O'Reilly Media"))
	assert.Equal(t, "", normalizeCompany("!!!"))
}

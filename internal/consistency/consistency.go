// Package consistency compares declared and enriched employers and derives a
// hireability assessment from profile signals.
package consistency

import (
	"fmt"
	"strings"
	"unicode"
)

// Company comparison outcomes.
const (
	LabelMatch       = "match"
	LabelLikelyMatch = "likely match"
	LabelUnknown     = "unknown"
	LabelDifferent   = "different"
)

// legalSuffixes are legal-entity tokens that soften word-overlap comparison.
var legalSuffixes = map[string]bool{
	"inc": true, "corp": true, "llc": true, "ltd": true, "co": true, "company": true,
}

// CompanyComparison is the outcome of comparing the declared company against
// the enriched one.
type CompanyComparison struct {
	Declared    string  `json:"declared"`
	Enriched    string  `json:"enriched"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// CompareCompanies classifies the agreement between the company a candidate
// declares and the one the enriched profile reports.
func CompareCompanies(declared, enriched string) CompanyComparison {
	cmp := CompanyComparison{Declared: declared, Enriched: enriched}

	normDeclared := normalizeCompany(declared)
	normEnriched := normalizeCompany(enriched)

	switch {
	case normDeclared == "" || normEnriched == "":
		cmp.Label = LabelUnknown
		cmp.Score = 5
		cmp.Description = "One or both company names are missing"
	case normDeclared == normEnriched:
		cmp.Label = LabelMatch
		cmp.Score = 10
		cmp.Description = "Declared and enriched companies match"
	case strings.Contains(normDeclared, normEnriched) || strings.Contains(normEnriched, normDeclared) ||
		likelySameEntity(normDeclared, normEnriched):
		cmp.Label = LabelLikelyMatch
		cmp.Score = 8
		cmp.Description = fmt.Sprintf("Declared %q closely resembles enriched %q", declared, enriched)
	default:
		cmp.Label = LabelDifferent
		cmp.Score = 3
		cmp.Description = fmt.Sprintf("Declared %q differs from enriched %q", declared, enriched)
	}
	return cmp
}

// normalizeCompany lowercases, strips punctuation and collapses whitespace.
func normalizeCompany(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// likelySameEntity reports whether two normalized names share at least 60% of
// their words while either side carries a legal-entity suffix token.
func likelySameEntity(a, b string) bool {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	hasSuffix := false
	for _, w := range append(append([]string{}, wordsA...), wordsB...) {
		if legalSuffixes[w] {
			hasSuffix = true
			break
		}
	}
	if !hasSuffix {
		return false
	}

	setA := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		setA[w] = true
	}
	shared := 0
	for _, w := range wordsB {
		if setA[w] {
			shared++
		}
	}
	smaller := len(wordsA)
	if len(wordsB) < smaller {
		smaller = len(wordsB)
	}
	return float64(shared)/float64(smaller) >= 0.6
}

// Package strmatch provides the fuzzy string scoring primitives shared by
// the reconciliation scorer (pkg/reconcile) and the deduplication
// clusterer (pkg/dedup): a token-sort ratio and a handful of
// field-specific similarity functions (email, phone, exact-code).
package strmatch

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Ratio returns a 0-100 similarity score between a and b, the same scale
// as the reference fuzzywuzzy-style "ratio" this module's Python-ERP
// ancestor used: 100 for identical strings, scaled down by edit distance
// relative to combined length.
func Ratio(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein.Distance(a, b, nil)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	score := 100 - (dist*100)/maxLen
	if score < 0 {
		score = 0
	}
	return score
}

// TokenSortRatio tokenizes a and b on whitespace, sorts the tokens, rejoins,
// and scores the result with Ratio. This neutralizes word-order differences
// ("Acme Corp" vs "Corp Acme") the way the spec's reference matcher does.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// ContainsToken reports whether every whitespace-delimited token of needle
// appears as a substring of haystack (case-insensitive). Used for the
// reference-matching "substring containment" fallback in spec.md §4.4.1.
func ContainsToken(haystack, needle string) bool {
	haystack = strings.ToLower(haystack)
	for _, tok := range strings.Fields(strings.ToLower(needle)) {
		if tok == "" {
			continue
		}
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// NormalizeDigits strips every non-digit rune from s, used to compare
// phone numbers regardless of formatting.
func NormalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EmailSimilarity implements spec.md §4.4.2's email field rule: exact
// match is 1.0; same domain with a different local part is
// 0.5 + 0.5*ratio(local); otherwise it falls back to a whole-string ratio.
func EmailSimilarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	aLocal, aDomain, aOK := strings.Cut(a, "@")
	bLocal, bDomain, bOK := strings.Cut(b, "@")
	if aOK && bOK && aDomain == bDomain {
		return 0.5 + 0.5*float64(Ratio(aLocal, bLocal))/100.0
	}
	return float64(Ratio(a, b)) / 100.0
}

// PhoneSimilarity implements spec.md §4.4.2's phone field rule over
// digit-normalized numbers: equal = 1.0; one ends with the other
// (country-code prefix) = 0.95; matching last 7 digits = 0.90; else 0.
func PhoneSimilarity(a, b string) float64 {
	a, b = NormalizeDigits(a), NormalizeDigits(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.HasSuffix(a, b) || strings.HasSuffix(b, a) {
		return 0.95
	}
	const tailLen = 7
	if len(a) >= tailLen && len(b) >= tailLen && a[len(a)-tailLen:] == b[len(b)-tailLen:] {
		return 0.90
	}
	return 0
}

// ExactSimilarity implements the VAT/product-code/barcode field rule:
// exact match (after trimming) is 1.0, else 0.0.
func ExactSimilarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 1.0
	}
	return 0
}

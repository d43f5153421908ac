package strmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("Acme Corp", "Corp Acme"))
}

func TestTokenSortRatioIsSymmetric(t *testing.T) {
	cases := [][2]string{
		{"Acme Corp", "ACME Corporation Ltd"},
		{"INV/2026/0042", "INV-2026-0042"},
		{"", "nonempty"},
	}
	for _, c := range cases {
		assert.Equal(t, TokenSortRatio(c[0], c[1]), TokenSortRatio(c[1], c[0]))
	}
}

func TestEmailSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, EmailSimilarity("info@acme.com", "info@acme.com"))
	assert.Equal(t, 1.0, EmailSimilarity("Info@Acme.com", "info@acme.com"))
	// Same domain: 0.5 + 0.5*ratio("info", "sales"); the local parts share
	// no characters, so the ratio is 0.
	assert.InDelta(t, 0.5, EmailSimilarity("info@acme.com", "sales@acme.com"), 0.0001)
	// Different domains: whole-string ratio, 4 edits over 14 characters.
	assert.InDelta(t, 0.72, EmailSimilarity("info@acme.com", "info@other.com"), 0.0001)
}

func TestPhoneSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, PhoneSimilarity("555-1234", "555-1234"))
	assert.Equal(t, 0.95, PhoneSimilarity("+1-555-1234567", "555-1234567"))
	assert.Equal(t, 0.90, PhoneSimilarity("1-555-1234567", "9-555-1234567"))
	assert.Equal(t, 0.0, PhoneSimilarity("1234", "5678"))
}

func TestExactSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, ExactSimilarity("US123456789", "us123456789"))
	assert.Equal(t, 0.0, ExactSimilarity("US123456789", "US999999999"))
	assert.Equal(t, 0.0, ExactSimilarity("", "US123456789"))
}

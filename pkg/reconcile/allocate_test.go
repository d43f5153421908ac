package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSkipsConsumedCandidates(t *testing.T) {
	lines := []BankLine{
		{ID: "L1", Ref: "INV/0001", Amount: 100, Partner: "Acme"},
		{ID: "L2", Ref: "INV/0001", Amount: 100, Partner: "Acme"},
	}
	candidates := []Candidate{
		{ID: "C1", Ref: "INV/0001", AmountResidual: 100, Partner: "Acme"},
	}

	suggestions := Allocate(lines, candidates, nil)
	require.Len(t, suggestions, 1, "the second identical line must not reuse the consumed candidate")
	assert.Equal(t, "L1", suggestions[0].LineID)
}

func TestAllocateOmitsLinesWithNoCandidateAboveThreshold(t *testing.T) {
	lines := []BankLine{{ID: "L1", Ref: "ZZZ", Amount: 1, Partner: "Nobody"}}
	candidates := []Candidate{{ID: "C1", Ref: "AAA", AmountResidual: 99999, Partner: "SomeoneElse"}}

	suggestions := Allocate(lines, candidates, nil)
	assert.Empty(t, suggestions)
}

func TestSessionRemainingNeverNegative(t *testing.T) {
	s := NewSession(2)
	s.RecordAutoMatch()
	s.RecordManualMatch()
	s.RecordSkip() // already fully accounted for; must not go negative

	assert.Equal(t, 0, s.Remaining())
	assert.GreaterOrEqual(t, s.Remaining(), 0)
}

func TestSessionRemainingMonotonicallyDecreases(t *testing.T) {
	s := NewSession(3)
	prev := s.Remaining()
	for i := 0; i < 3; i++ {
		s.RecordAutoMatch()
		cur := s.Remaining()
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 3, s.TotalLines, "R2: total_lines is preserved across the session")
}

// Package reconcile is the C4 bank-reconciliation scorer: given a bank
// statement line and a set of candidate journal entries, score each
// candidate, classify the best match, and greedily allocate matches across
// a batch of lines (spec.md §4.4.1).
package reconcile

import "time"

// BankLine is one unreconciled bank statement line.
type BankLine struct {
	ID      string
	Ref     string
	Amount  float64
	Partner string
	Date    time.Time
}

// Candidate is one open journal entry eligible to match a BankLine.
type Candidate struct {
	ID             string
	Ref            string
	AmountResidual float64
	Partner        string
}

// MatchType classifies the strength of a score.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchLearned MatchType = "learned"
	MatchFuzzy   MatchType = "fuzzy"
	MatchPartial MatchType = "partial"
	MatchNone    MatchType = "none"
)

// SignalBreakdown records each weighted signal's contribution, surfaced to
// operators reviewing a suggested match.
type SignalBreakdown struct {
	Reference   float64
	Amount      float64
	Partner     float64
	LearnedRule float64
}

// Score is the total and the per-signal breakdown for one BankLine/Candidate pair.
type Score struct {
	Total           float64
	Breakdown       SignalBreakdown
	Classification  MatchType
	LearnedRuleUsed bool
}

// Suggestion is the best-scoring candidate for a line, or none if nothing cleared MatchPartial.
type Suggestion struct {
	LineID          string
	MatchedEntryID  string
	Confidence      float64
	MatchType       MatchType
	SignalBreakdown SignalBreakdown
}

// LearnedRule captures the lower-cased, stripped patterns of a manually
// confirmed match, generated on every manual match per spec.md §4.4.1.
type LearnedRule struct {
	BankRefPattern     string
	BankPartnerPattern string
	EntryRefPattern    string
	EntryPartnerPattern string
	CreatedAt          time.Time
}

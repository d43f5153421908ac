package reconcile

import (
	"math"
	"strings"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/strmatch"
)

// Signal weights from spec.md §4.4.1.
const (
	weightReference   = 0.40
	weightAmount      = 0.35
	weightPartner     = 0.15
	weightLearnedRule = 0.10
)

const (
	tokenSortThreshold = 70 // reference fuzzy-match floor, 0-100 scale
	partnerFullMatch   = 85
	partnerHalfMatch   = 65
)

// Score computes the weighted signal score and classification for one
// BankLine/Candidate pair, checking rules for a learned-rule bonus.
func ScorePair(line BankLine, cand Candidate, rules []LearnedRule) Score {
	breakdown := SignalBreakdown{
		Reference: referenceScore(line.Ref, cand.Ref),
		Amount:    amountScore(line.Amount, cand.AmountResidual),
		Partner:   partnerScore(line.Partner, cand.Partner),
	}

	learnedApplies := matchesLearnedRule(line, cand, rules)
	if learnedApplies {
		breakdown.LearnedRule = weightLearnedRule
	}

	total := breakdown.Reference + breakdown.Amount + breakdown.Partner + breakdown.LearnedRule

	return Score{
		Total:           total,
		Breakdown:       breakdown,
		Classification:  classify(total, breakdown, learnedApplies),
		LearnedRuleUsed: learnedApplies,
	}
}

// referenceScore implements the 0.40-weighted reference signal: exact
// token-sort match scores the full weight, substring containment also
// counts as exact, otherwise the ratio is scaled down from the weight.
func referenceScore(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	ratio := strmatch.TokenSortRatio(a, b)
	if ratio == 100 || strmatch.ContainsToken(a, b) || strmatch.ContainsToken(b, a) {
		return weightReference
	}
	if ratio >= tokenSortThreshold {
		return weightReference * float64(ratio) / 100.0
	}
	return 0
}

// amountScore implements the 0.35-weighted amount signal per spec.md's
// tiered tolerance table.
func amountScore(bankAmount, residual float64) float64 {
	diff := math.Abs(bankAmount - residual)
	if diff < 0.01 {
		return weightAmount
	}
	if diff <= 0.50 {
		return 0.30
	}
	if residual == 0 {
		return 0
	}
	relDiff := diff / math.Abs(residual)
	if relDiff <= 0.02 {
		return 0.28
	}
	if relDiff <= 0.10 {
		// Linearly scale from 0.28 at 2% down to 0 at 10%.
		return 0.28 * (0.10 - relDiff) / 0.08
	}
	return 0
}

// partnerScore implements the 0.15-weighted partner-name signal.
func partnerScore(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	ratio := strmatch.TokenSortRatio(a, b)
	switch {
	case ratio >= partnerFullMatch:
		return weightPartner
	case ratio >= partnerHalfMatch:
		return weightPartner / 2
	default:
		return 0
	}
}

// matchesLearnedRule reports whether any rule's four patterns all match
// this line/candidate pair at ≥ 80% token-sort similarity.
func matchesLearnedRule(line BankLine, cand Candidate, rules []LearnedRule) bool {
	const ruleThreshold = 80
	for _, r := range rules {
		if strmatch.TokenSortRatio(strings.ToLower(strings.TrimSpace(line.Ref)), r.BankRefPattern) < ruleThreshold {
			continue
		}
		if strmatch.TokenSortRatio(strings.ToLower(strings.TrimSpace(line.Partner)), r.BankPartnerPattern) < ruleThreshold {
			continue
		}
		if strmatch.TokenSortRatio(strings.ToLower(strings.TrimSpace(cand.Ref)), r.EntryRefPattern) < ruleThreshold {
			continue
		}
		if strmatch.TokenSortRatio(strings.ToLower(strings.TrimSpace(cand.Partner)), r.EntryPartnerPattern) < ruleThreshold {
			continue
		}
		return true
	}
	return false
}

// classify implements spec.md §4.4.1's tie-break table.
func classify(total float64, breakdown SignalBreakdown, learnedApplies bool) MatchType {
	switch {
	case total >= 0.90:
		return MatchExact
	case learnedApplies && total >= 0.50:
		return MatchLearned
	case breakdown.Reference >= weightReference*float64(tokenSortThreshold)/100.0 || breakdown.Amount >= 0.28:
		return MatchFuzzy
	case total >= 0.30:
		return MatchPartial
	default:
		return MatchNone
	}
}

// NewLearnedRuleFrom builds a LearnedRule from a manually confirmed match, per
// spec.md §4.4.1: lower-cased, stripped patterns of all four fields.
func NewLearnedRuleFrom(line BankLine, cand Candidate, now func() time.Time) LearnedRule {
	return LearnedRule{
		BankRefPattern:      strings.ToLower(strings.TrimSpace(line.Ref)),
		BankPartnerPattern:  strings.ToLower(strings.TrimSpace(line.Partner)),
		EntryRefPattern:     strings.ToLower(strings.TrimSpace(cand.Ref)),
		EntryPartnerPattern: strings.ToLower(strings.TrimSpace(cand.Partner)),
		CreatedAt:           now(),
	}
}

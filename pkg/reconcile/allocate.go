package reconcile

// Allocate greedily matches each line against candidates in input order,
// skipping candidates already consumed by an earlier line (spec.md
// §4.4.1's greedy allocation rule). Lines with no candidate scoring above
// MatchPartial get no Suggestion entry.
func Allocate(lines []BankLine, candidates []Candidate, rules []LearnedRule) []Suggestion {
	consumed := make(map[string]bool, len(candidates))
	var suggestions []Suggestion

	for _, line := range lines {
		var best *Candidate
		var bestScore Score
		for i := range candidates {
			cand := candidates[i]
			if consumed[cand.ID] {
				continue
			}
			score := ScorePair(line, cand, rules)
			if score.Classification == MatchNone {
				continue
			}
			if best == nil || score.Total > bestScore.Total {
				c := cand
				best = &c
				bestScore = score
			}
		}
		if best == nil {
			continue
		}
		consumed[best.ID] = true
		suggestions = append(suggestions, Suggestion{
			LineID:          line.ID,
			MatchedEntryID:  best.ID,
			Confidence:      bestScore.Total,
			MatchType:       bestScore.Classification,
			SignalBreakdown: bestScore.Breakdown,
		})
	}
	return suggestions
}

// Session tracks a reconciliation batch's progress, enforcing invariant A5
// (remaining = total_lines − auto_matched − manually_matched − skipped,
// always ≥ 0) and R2 (total_lines stays fixed; remaining only decreases).
type Session struct {
	TotalLines      int
	AutoMatched     int
	ManuallyMatched int
	Skipped         int
}

// NewSession starts a session over totalLines unreconciled bank lines.
func NewSession(totalLines int) *Session {
	return &Session{TotalLines: totalLines}
}

// Remaining implements invariant A5.
func (s *Session) Remaining() int {
	r := s.TotalLines - s.AutoMatched - s.ManuallyMatched - s.Skipped
	if r < 0 {
		return 0
	}
	return r
}

// RecordAutoMatch advances the session after an auto-applied exact/learned match.
func (s *Session) RecordAutoMatch() {
	if s.Remaining() == 0 {
		return
	}
	s.AutoMatched++
}

// RecordManualMatch advances the session after an operator confirms a suggestion.
func (s *Session) RecordManualMatch() {
	if s.Remaining() == 0 {
		return
	}
	s.ManuallyMatched++
}

// RecordSkip advances the session when a line is left unreconciled this pass.
func (s *Session) RecordSkip() {
	if s.Remaining() == 0 {
		return
	}
	s.Skipped++
}

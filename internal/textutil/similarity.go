package textutil

import (
	"github.com/pmezard/go-difflib/difflib"
)

// SequenceRatio returns the longest-matching-blocks similarity of a and b as
// 2*M/T, where M is the number of matched code points and T the combined
// length. Two empty strings are identical (1.0).
func SequenceRatio(a, b string) float64 {
	return newMatcher(a, b).Ratio()
}

// CloseMatch returns the candidate most similar to word whose ratio is at
// least cutoff. Ties on the ratio resolve to the lexicographically greatest
// candidate so the result does not depend on candidate order.
func CloseMatch(word string, candidates []string, cutoff float64) (string, float64, bool) {
	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, candidate := range candidates {
		m := newMatcher(candidate, word)
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && candidate > best) {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, bestScore, found
}

func newMatcher(a, b string) *difflib.SequenceMatcher {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b))
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

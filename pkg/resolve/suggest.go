package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// suggestion is a single scored candidate.
type suggestion struct {
	Path  string
	Score float64
}

// Suggest returns up to limit candidate paths that look similar to the
// failed target, best first. It combines substring matching, Levenshtein
// distance and token overlap; candidates below a fixed threshold are
// dropped so wild guesses never show up in diagnostics.
func Suggest(target string, candidates []string, limit int) []string {
	if target == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	queryLower := strings.ToLower(target)
	queryTokens := tokenize(queryLower)

	var scored []suggestion
	for _, cand := range candidates {
		score := similarity(queryLower, queryTokens, cand)
		if score > 0.3 {
			scored = append(scored, suggestion{Path: cand, Score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Path < scored[j].Path
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Path
	}
	return out
}

// similarity returns a score between 0 and 1.
func similarity(queryLower string, queryTokens map[string]bool, candidate string) float64 {
	candLower := strings.ToLower(candidate)

	if queryLower == candLower {
		return 1.0
	}
	if strings.Contains(candLower, queryLower) {
		return 0.95
	}

	// Global Levenshtein similarity, useful when the target is a near-miss
	// of the full path.
	maxLen := len(queryLower)
	if len(candLower) > maxLen {
		maxLen = len(candLower)
	}
	dist := levenshtein.Distance(queryLower, candLower, nil)
	levScore := 1.0 - float64(dist)/float64(maxLen)

	// Token overlap (Jaccard), so "user_service" still finds
	// "services/user.py".
	candTokens := tokenize(candLower)
	inter, union := 0, len(candTokens)
	for tok := range queryTokens {
		if candTokens[tok] {
			inter++
		} else {
			union++
		}
	}
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(inter) / float64(union)
	}

	score := levScore
	if jaccard > score {
		score = jaccard
	}
	return score
}

// tokenize splits on any non-alphanumeric rune.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens[cur.String()] = true
			cur.Reset()
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

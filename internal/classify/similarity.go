package classify

import "strings"

// Scoring constants for the similarity cascade.
const (
	containmentBase  = 0.8
	containmentSpan  = 0.15
	reorderExact     = 0.9
	tokenMatchFloor  = 0.8
)

// Similarity scores how alike two strings are on a [0,1] scale.
//
// The cascade short-circuits on the cheap checks first: empty input scores
// zero, case-insensitive equality scores 1.0, and substring containment
// scores 0.8 plus a length-ratio bonus. Otherwise the score is the best of
// edit-distance similarity, token-set overlap, and token-reorder similarity,
// so that both character-level typos and word-order changes are tolerated.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return containmentBase + (float64(len(shorter))/float64(len(longer)))*containmentSpan
	}

	score := levenshteinSimilarity(a, b)
	if s := jaccardSimilarity(a, b); s > score {
		score = s
	}
	if s := tokenReorderSimilarity(a, b); s > score {
		score = s
	}
	return score
}

// levenshteinSimilarity normalizes edit distance by the longer string length.
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance over runes with the classic
// two-row dynamic programming table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// jaccardSimilarity measures whitespace-token set overlap.
func jaccardSimilarity(a, b string) float64 {
	aTokens := tokenSet(a)
	bTokens := tokenSet(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	intersection := 0
	for token := range aTokens {
		if bTokens[token] {
			intersection++
		}
	}
	union := len(aTokens) + len(bTokens) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}

// tokenReorderSimilarity tolerates word-order changes and per-word typos.
// Identical token multisets score 0.9; otherwise the score is the fraction
// of tokens that pair up with edit-distance similarity of at least 0.8.
func tokenReorderSimilarity(a, b string) float64 {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	larger := max(len(aTokens), len(bTokens))
	if larger == 0 {
		return 0
	}

	if sortedJoin(aTokens) == sortedJoin(bTokens) {
		return reorderExact
	}

	used := make([]bool, len(bTokens))
	matched := 0
	for _, at := range aTokens {
		for j, bt := range bTokens {
			if used[j] {
				continue
			}
			if levenshteinSimilarity(at, bt) >= tokenMatchFloor {
				used[j] = true
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(larger)
}

func sortedJoin(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return strings.Join(sorted, " ")
}

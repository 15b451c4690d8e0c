package classify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Default matching parameters. Callers pass zero values to accept these.
const (
	DefaultMatchThreshold      = 0.6
	DefaultTropeLimit          = 10
	DefaultSuggestionLimit     = 3
	DefaultSuggestionThreshold = 0.3
)

// MatchResult is one accepted fuzzy match between a free-text input and a
// canonical vocabulary value.
type MatchResult struct {
	Input      string  `json:"input"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// SpiceMatch resolves a spice-level notation to its 1-5 ordinal.
type SpiceMatch struct {
	Input      string  `json:"input"`
	Level      int     `json:"level"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Matcher performs fuzzy matching against the loaded vocabulary.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	vocab *Vocabulary
}

// NewMatcher builds a Matcher over an already-loaded vocabulary.
func NewMatcher(vocab *Vocabulary) *Matcher {
	return &Matcher{vocab: vocab}
}

// Vocabulary exposes the matcher's candidate sets.
func (m *Matcher) Vocabulary() *Vocabulary {
	return m.vocab
}

// MatchGenre finds the single best genre for input at or above threshold.
// A threshold of zero means DefaultMatchThreshold.
func (m *Matcher) MatchGenre(input string, threshold float64) (MatchResult, bool) {
	return m.matchBest(input, m.vocab.genres, threshold)
}

// MatchSubgenre finds the single best subgenre for input at or above threshold.
func (m *Matcher) MatchSubgenre(input string, threshold float64) (MatchResult, bool) {
	return m.matchBest(input, m.vocab.subgenres, threshold)
}

// matchBest scans candidates in vocabulary order and keeps the first
// strictly-best score, so equal-scoring candidates resolve deterministically
// to the earlier vocabulary entry.
func (m *Matcher) matchBest(input string, candidates []string, threshold float64) (MatchResult, bool) {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if strings.TrimSpace(input) == "" {
		return MatchResult{}, false
	}

	best := MatchResult{Input: input}
	for _, candidate := range candidates {
		if score := Similarity(input, candidate); score > best.Confidence {
			best.Value = candidate
			best.Confidence = score
		}
	}
	if best.Confidence < threshold {
		return MatchResult{}, false
	}
	return best, true
}

// MatchTropes matches each input against the trope vocabulary independently.
// Inputs that fail to reach the threshold are reported back in unmatched
// rather than silently dropped. Matches are ordered by descending confidence
// and truncated to limit (zero means DefaultTropeLimit).
func (m *Matcher) MatchTropes(inputs []string, threshold float64, limit int) (matches []MatchResult, unmatched []string) {
	if limit <= 0 {
		limit = DefaultTropeLimit
	}

	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		if match, ok := m.matchBest(input, m.vocab.tropes, threshold); ok {
			matches = append(matches, match)
		} else {
			unmatched = append(unmatched, input)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, unmatched
}

// spiceKeywords maps descriptive phrases to spice levels. Entries are
// checked in order, so multi-word and higher-intensity phrases come before
// any shorter phrase they contain.
var spiceKeywords = []struct {
	keyword string
	level   int
}{
	{"fade to black", 1},
	{"closed door", 1},
	{"clean", 1},
	{"sweet", 1},
	{"mild", 2},
	{"warm", 2},
	{"kisses", 2},
	{"steamy", 3},
	{"sensual", 3},
	{"open door", 3},
	{"scorching", 5},
	{"erotic", 5},
	{"explicit", 4},
	{"spicy", 4},
	{"hot", 4},
}

// pepperGlyph is U+1F336; inputs often carry a trailing variation selector
// (U+FE0F) which must not affect the count.
const pepperGlyph = "\U0001F336"

// MatchSpiceLevel resolves a spice notation to a 1-5 ordinal. Recognized
// notations, in priority order: a literal digit, a descriptive keyword, and
// a run of pepper glyphs. Unrecognized input is a no-match, never an error.
func (m *Matcher) MatchSpiceLevel(input string) (SpiceMatch, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return SpiceMatch{}, false
	}

	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= MaxSpiceLevel {
		return SpiceMatch{Input: input, Level: n, Confidence: 1.0}, true
	}

	lower := strings.ToLower(trimmed)
	for _, entry := range spiceKeywords {
		if strings.Contains(lower, entry.keyword) {
			return SpiceMatch{
				Input:      input,
				Level:      entry.level,
				Confidence: 0.8,
				Reason:     fmt.Sprintf("keyword %q", entry.keyword),
			}, true
		}
	}

	if count := strings.Count(trimmed, pepperGlyph); count >= 1 && count <= MaxSpiceLevel {
		return SpiceMatch{
			Input:      input,
			Level:      count,
			Confidence: 0.9,
			Reason:     fmt.Sprintf("%d pepper glyphs", count),
		}, true
	}

	return SpiceMatch{}, false
}

// SuggestGenres returns the closest genre alternatives for a failed match.
func (m *Matcher) SuggestGenres(input string, limit int) []string {
	return suggest(input, m.vocab.genres, limit)
}

// SuggestSubgenres returns the closest subgenre alternatives.
func (m *Matcher) SuggestSubgenres(input string, limit int) []string {
	return suggest(input, m.vocab.subgenres, limit)
}

// SuggestTropes returns the closest trope alternatives.
func (m *Matcher) SuggestTropes(input string, limit int) []string {
	return suggest(input, m.vocab.tropes, limit)
}

// suggest ranks candidates by similarity, keeps those above the suggestion
// floor, and returns the top limit in descending order.
func suggest(input string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	type scored struct {
		value string
		score float64
	}
	var ranked []scored
	for _, candidate := range candidates {
		if score := Similarity(input, candidate); score > DefaultSuggestionThreshold {
			ranked = append(ranked, scored{candidate, score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	suggestions := make([]string, 0, len(ranked))
	for _, s := range ranked {
		suggestions = append(suggestions, s.value)
	}
	return suggestions
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"Romance", "enemies to lovers", "Dark Academia", "x"} {
		assert.Equal(t, 1.0, Similarity(s, s), "identical strings must score 1.0: %q", s)
	}
}

func TestSimilarity_CaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("  Romance ", "romance"))
	assert.Equal(t, 1.0, Similarity("ENEMIES TO LOVERS", "enemies to lovers"))
}

func TestSimilarity_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "romance"))
	assert.Equal(t, 0.0, Similarity("romance", ""))
	assert.Equal(t, 0.0, Similarity("   ", "romance"))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarity_Containment(t *testing.T) {
	score := Similarity("romance", "dark romance")
	// 0.8 base plus the length-ratio bonus.
	assert.InDelta(t, 0.8+(7.0/12.0)*0.15, score, 1e-9)
	assert.Greater(t, score, 0.8)
}

func TestSimilarity_Typo(t *testing.T) {
	score := Similarity("enemys to lovers", "enemies to lovers")
	assert.GreaterOrEqual(t, score, 0.6, "a small typo must still clear the default threshold")
	assert.Less(t, score, 1.0)
}

func TestSimilarity_TokenReorder(t *testing.T) {
	// Identical token sets reordered: Jaccard alone already scores 1.0.
	assert.Equal(t, 1.0, Similarity("lovers to enemies", "enemies to lovers"))
	// The reorder metric itself caps sorted-equal multisets at 0.9.
	assert.Equal(t, 0.9, tokenReorderSimilarity("lovers to enemies", "enemies to lovers"))
	// Reordered tokens with a typo still pair up well.
	assert.GreaterOrEqual(t, tokenReorderSimilarity("lovers to enemys", "enemies to lovers"), 2.0/3.0)
}

func TestSimilarity_Disjoint(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"abc", "xyz"},
		{"qqq", "zzzz"},
		{"kfj", "wmpx"},
	}
	for _, tt := range tests {
		score := Similarity(tt.a, tt.b)
		assert.Less(t, score, 0.3, "strings with no shared characters must score below 0.3: %q vs %q", tt.a, tt.b)
	}
}

func TestSimilarity_Symmetry(t *testing.T) {
	pairs := []struct {
		a, b string
	}{
		{"romance", "dark romance"},
		{"enemys to lovers", "enemies to lovers"},
		{"fantasy", "science fiction"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p.a, p.b), Similarity(p.b, p.a))
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, jaccardSimilarity("enemies to lovers", "lovers enemies to"))
	assert.InDelta(t, 1.0/3.0, jaccardSimilarity("dark romance", "dark fantasy"), 1e-9)
	assert.Equal(t, 0.0, jaccardSimilarity("romance", "fantasy"))
}

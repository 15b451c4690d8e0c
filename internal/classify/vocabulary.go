// Package classify implements the fuzzy classification matching engine.
//
// Free-text classification values (genre, subgenre, tropes, spice level)
// arrive from unreliable sources - manual entry or AI-assisted web research -
// and are reconciled against a small controlled vocabulary using string
// similarity. The vocabulary is loaded once at startup and is immutable
// afterward, so all matching operations are pure and safe for concurrent use.
package classify

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MaxSpiceLevel is the top of the 1-5 spice ordinal.
const MaxSpiceLevel = 5

// vocabularyFile mirrors the YAML taxonomy document.
type vocabularyFile struct {
	Genres []struct {
		Genre    string `yaml:"Genre"`
		Subgenre string `yaml:"Subgenre"`
	} `yaml:"Genres"`
	Tropes []struct {
		Tropes []string `yaml:"Tropes"`
	} `yaml:"Tropes"`
	SpiceLevels []struct {
		Label string `yaml:"Label"`
	} `yaml:"Spice_Levels"`
}

// Vocabulary holds the flattened, deduplicated candidate sets that free-text
// input is matched against. Candidate order follows document order, which
// doubles as the deterministic tie-break order for equal-scoring matches.
//
// A Vocabulary is immutable after construction; there is no reload API.
// Reinitializing requires loading a fresh instance.
type Vocabulary struct {
	genres      []string
	subgenres   []string
	tropes      []string
	spiceLabels map[int]string
}

// LoadVocabulary reads and flattens the taxonomy document at path.
// A missing or malformed document is fatal: no partial vocabulary is
// ever returned.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Vocabulary path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary builds a Vocabulary from raw YAML.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	v := &Vocabulary{
		spiceLabels: make(map[int]string),
	}

	seenGenres := make(map[string]bool)
	seenSubgenres := make(map[string]bool)
	for _, entry := range file.Genres {
		if entry.Genre != "" && !seenGenres[entry.Genre] {
			seenGenres[entry.Genre] = true
			v.genres = append(v.genres, entry.Genre)
		}
		if entry.Subgenre != "" && !seenSubgenres[entry.Subgenre] {
			seenSubgenres[entry.Subgenre] = true
			v.subgenres = append(v.subgenres, entry.Subgenre)
		}
	}

	// The document groups tropes; the grouping is discarded and all tropes
	// become one flat candidate set.
	seenTropes := make(map[string]bool)
	for _, group := range file.Tropes {
		for _, trope := range group.Tropes {
			if trope != "" && !seenTropes[trope] {
				seenTropes[trope] = true
				v.tropes = append(v.tropes, trope)
			}
		}
	}

	// Spice labels are ordinal by document position, 1-based.
	for i, entry := range file.SpiceLevels {
		level := i + 1
		if level > MaxSpiceLevel {
			return nil, fmt.Errorf("vocabulary defines %d spice levels, maximum is %d", len(file.SpiceLevels), MaxSpiceLevel)
		}
		if entry.Label == "" {
			return nil, fmt.Errorf("spice level %d has an empty label", level)
		}
		v.spiceLabels[level] = entry.Label
	}

	if len(v.genres) == 0 {
		return nil, fmt.Errorf("vocabulary has no genres")
	}
	if len(v.subgenres) == 0 {
		return nil, fmt.Errorf("vocabulary has no subgenres")
	}
	if len(v.tropes) == 0 {
		return nil, fmt.Errorf("vocabulary has no tropes")
	}
	if len(v.spiceLabels) != MaxSpiceLevel {
		return nil, fmt.Errorf("vocabulary defines %d spice levels, expected %d", len(v.spiceLabels), MaxSpiceLevel)
	}

	return v, nil
}

// Genres returns the genre candidate set in document order.
func (v *Vocabulary) Genres() []string {
	return append([]string(nil), v.genres...)
}

// Subgenres returns the subgenre candidate set in document order.
func (v *Vocabulary) Subgenres() []string {
	return append([]string(nil), v.subgenres...)
}

// Tropes returns the flattened trope candidate set in document order.
func (v *Vocabulary) Tropes() []string {
	return append([]string(nil), v.tropes...)
}

// SpiceLabel returns the descriptive label for a spice level, if defined.
func (v *Vocabulary) SpiceLabel(level int) (string, bool) {
	label, ok := v.spiceLabels[level]
	return label, ok
}

// ContainsGenre reports whether value is an exact vocabulary genre.
// Used by callers that fall back to strict enumerated checks.
func (v *Vocabulary) ContainsGenre(value string) bool {
	return contains(v.genres, value)
}

// ContainsSubgenre reports whether value is an exact vocabulary subgenre.
func (v *Vocabulary) ContainsSubgenre(value string) bool {
	return contains(v.subgenres, value)
}

// ContainsTrope reports whether value is an exact vocabulary trope.
func (v *Vocabulary) ContainsTrope(value string) bool {
	return contains(v.tropes, value)
}

func contains(candidates []string, value string) bool {
	for _, c := range candidates {
		if c == value {
			return true
		}
	}
	return false
}

// Classifications is the controlled vocabulary in a shape suitable for
// advertising to external callers over HTTP.
type Classifications struct {
	Genres            []string       `json:"genres"`
	Subgenres         []string       `json:"subgenres"`
	Tropes            []string       `json:"tropes"`
	SpiceLevels       []int          `json:"spice_levels"`
	SpiceDescriptions map[int]string `json:"spice_descriptions"`
}

// AvailableClassifications returns the full controlled vocabulary.
func (v *Vocabulary) AvailableClassifications() Classifications {
	levels := make([]int, 0, len(v.spiceLabels))
	for level := range v.spiceLabels {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	descriptions := make(map[int]string, len(v.spiceLabels))
	for level, label := range v.spiceLabels {
		descriptions[level] = label
	}

	return Classifications{
		Genres:            v.Genres(),
		Subgenres:         v.Subgenres(),
		Tropes:            v.Tropes(),
		SpiceLevels:       levels,
		SpiceDescriptions: descriptions,
	}
}

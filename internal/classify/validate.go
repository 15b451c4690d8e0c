package classify

import (
	"fmt"
	"strings"
)

// ValidateOptions is the stricter acceptance policy layered on top of plain
// matching when a book record is about to be persisted. Zero thresholds fall
// back to the defaults.
type ValidateOptions struct {
	GenreThreshold    float64
	SubgenreThreshold float64
	TropeThreshold    float64
}

// Default validation thresholds. Genre is load-bearing for shelving and
// reporting, so it is held to a higher bar than tropes.
const (
	DefaultGenreValidateThreshold    = 0.7
	DefaultSubgenreValidateThreshold = 0.7
	DefaultTropeValidateThreshold    = 0.6
)

func (o ValidateOptions) withDefaults() ValidateOptions {
	if o.GenreThreshold <= 0 {
		o.GenreThreshold = DefaultGenreValidateThreshold
	}
	if o.SubgenreThreshold <= 0 {
		o.SubgenreThreshold = DefaultSubgenreValidateThreshold
	}
	if o.TropeThreshold <= 0 {
		o.TropeThreshold = DefaultTropeValidateThreshold
	}
	return o
}

// AppliedValues are the canonical values a passing record should be stored
// with. They are populated from whatever matched, even when validation as a
// whole fails, so callers can show the user what would have been applied.
type AppliedValues struct {
	Genre      string   `json:"genre,omitempty"`
	Subgenre   string   `json:"subgenre,omitempty"`
	Tropes     []string `json:"tropes,omitempty"`
	SpiceLevel int      `json:"spice_level,omitempty"`
}

// ValidationResult reports whether a record's classification values are
// acceptable for persistence. Errors block the write; warnings do not.
type ValidationResult struct {
	IsValid        bool                 `json:"is_valid"`
	Errors         []FieldError         `json:"errors,omitempty"`
	Warnings       []FieldError         `json:"warnings,omitempty"`
	Suggestions    map[string][]string  `json:"suggestions,omitempty"`
	Matched        AppliedValues        `json:"matched"`
	Classification ClassificationResult `json:"classification"`
}

// ValidateBookData classifies a record and applies the acceptance policy:
// a weak or missing genre match is an error, weak subgenre and trope matches
// are warnings. Suggestions accompany every rejection so the caller can
// offer corrections.
func (c *Classifier) ValidateBookData(record Record, opts ValidateOptions) ValidationResult {
	opts = opts.withDefaults()
	classification := c.ClassifyBook(record)

	result := ValidationResult{
		IsValid:        true,
		Suggestions:    make(map[string][]string),
		Classification: classification,
	}
	for field, suggestions := range classification.Suggestions {
		result.Suggestions[field] = suggestions
	}

	c.validateGenre(record, classification, opts, &result)
	c.validateSubgenre(record, classification, opts, &result)
	c.validateTropes(classification, opts, &result)
	c.validateSpice(record, classification, &result)

	result.Matched = appliedValues(classification)
	return result
}

func (c *Classifier) validateGenre(record Record, cls ClassificationResult, opts ValidateOptions, result *ValidationResult) {
	if strings.TrimSpace(record.Genre) == "" {
		return
	}
	if cls.Genre == nil {
		result.IsValid = false
		result.Errors = append(result.Errors, FieldError{
			Field:  FieldGenre,
			Input:  record.Genre,
			Reason: "no matching genre found",
		})
		return
	}
	if cls.Genre.Confidence < opts.GenreThreshold {
		result.IsValid = false
		result.Errors = append(result.Errors, FieldError{
			Field:  FieldGenre,
			Input:  record.Genre,
			Reason: fmt.Sprintf("genre match %q is below the acceptance threshold (%.2f < %.2f)", cls.Genre.Value, cls.Genre.Confidence, opts.GenreThreshold),
		})
		if suggestions := c.matcher.SuggestGenres(record.Genre, c.opts.MaxSuggestions); len(suggestions) > 0 {
			result.Suggestions[FieldGenre] = suggestions
		}
	}
}

func (c *Classifier) validateSubgenre(record Record, cls ClassificationResult, opts ValidateOptions, result *ValidationResult) {
	if strings.TrimSpace(record.Subgenre) == "" {
		return
	}
	if cls.Subgenre == nil {
		result.Warnings = append(result.Warnings, FieldError{
			Field:  FieldSubgenre,
			Input:  record.Subgenre,
			Reason: "no matching subgenre found",
		})
		return
	}
	if cls.Subgenre.Confidence < opts.SubgenreThreshold {
		result.Warnings = append(result.Warnings, FieldError{
			Field:  FieldSubgenre,
			Input:  record.Subgenre,
			Reason: fmt.Sprintf("subgenre match %q is below the acceptance threshold (%.2f < %.2f)", cls.Subgenre.Value, cls.Subgenre.Confidence, opts.SubgenreThreshold),
		})
		if suggestions := c.matcher.SuggestSubgenres(record.Subgenre, c.opts.MaxSuggestions); len(suggestions) > 0 {
			result.Suggestions[FieldSubgenre] = suggestions
		}
	}
}

func (c *Classifier) validateTropes(cls ClassificationResult, opts ValidateOptions, result *ValidationResult) {
	var weak []string
	for _, match := range cls.Tropes {
		if match.Confidence < opts.TropeThreshold {
			weak = append(weak, match.Input)
		}
	}
	if len(weak) > 0 {
		result.Warnings = append(result.Warnings, FieldError{
			Field:  FieldTropes,
			Input:  strings.Join(weak, ", "),
			Reason: "trope matches below the acceptance threshold",
		})
	}
	if len(cls.UnmatchedTropes) > 0 {
		result.Warnings = append(result.Warnings, FieldError{
			Field:  FieldTropes,
			Input:  strings.Join(cls.UnmatchedTropes, ", "),
			Reason: "no matching tropes found",
		})
	}
}

func (c *Classifier) validateSpice(record Record, cls ClassificationResult, result *ValidationResult) {
	input, ok := coerceSpice(record.SpiceLevel)
	if !ok || strings.TrimSpace(input) == "" {
		return
	}
	if cls.Spice == nil {
		result.Warnings = append(result.Warnings, FieldError{
			Field:  FieldSpiceLevel,
			Input:  input,
			Reason: "unrecognized spice level notation",
		})
	}
}

func appliedValues(cls ClassificationResult) AppliedValues {
	applied := AppliedValues{}
	if cls.Genre != nil {
		applied.Genre = cls.Genre.Value
	}
	if cls.Subgenre != nil {
		applied.Subgenre = cls.Subgenre.Value
	}
	for _, t := range cls.Tropes {
		applied.Tropes = append(applied.Tropes, t.Value)
	}
	if cls.Spice != nil {
		applied.SpiceLevel = cls.Spice.Level
	}
	return applied
}

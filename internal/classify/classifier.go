package classify

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names used in classification and validation results.
const (
	FieldGenre      = "genre"
	FieldSubgenre   = "subgenre"
	FieldTropes     = "tropes"
	FieldSpiceLevel = "spice_level"
)

// Record is an incoming, possibly unreliable set of classification values.
// Tropes and SpiceLevel accept loose types because upstream sources disagree
// on shape: tropes may arrive as a list or a single string, spice as a
// number or free text. Malformed shapes become field errors, never panics.
type Record struct {
	Genre      string `json:"genre,omitempty"`
	Subgenre   string `json:"subgenre,omitempty"`
	Tropes     any    `json:"tropes,omitempty"`
	SpiceLevel any    `json:"spice_level,omitempty"`
}

// FieldError describes a classification failure for a single field.
type FieldError struct {
	Field  string `json:"field"`
	Input  string `json:"input,omitempty"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (input %q)", e.Field, e.Reason, e.Input)
}

// ClassificationResult holds the outcome of classifying one record. Fields
// that matched carry their canonical values and per-field confidence; fields
// that did not carry an error and, where possible, ranked alternatives.
type ClassificationResult struct {
	Genre             *MatchResult        `json:"genre,omitempty"`
	Subgenre          *MatchResult        `json:"subgenre,omitempty"`
	Tropes            []MatchResult       `json:"tropes,omitempty"`
	UnmatchedTropes   []string            `json:"unmatched_tropes,omitempty"`
	Spice             *SpiceMatch         `json:"spice,omitempty"`
	Confidence        map[string]float64  `json:"confidence"`
	Suggestions       map[string][]string `json:"suggestions,omitempty"`
	Errors            []FieldError        `json:"errors,omitempty"`
	OverallConfidence float64             `json:"overall_confidence"`
}

// Matched returns the resolved canonical values keyed by field name.
// Only fields that actually matched appear.
func (r *ClassificationResult) Matched() map[string]any {
	matched := make(map[string]any)
	if r.Genre != nil {
		matched[FieldGenre] = r.Genre.Value
	}
	if r.Subgenre != nil {
		matched[FieldSubgenre] = r.Subgenre.Value
	}
	if len(r.Tropes) > 0 {
		values := make([]string, 0, len(r.Tropes))
		for _, t := range r.Tropes {
			values = append(values, t.Value)
		}
		matched[FieldTropes] = values
	}
	if r.Spice != nil {
		matched[FieldSpiceLevel] = r.Spice.Level
	}
	return matched
}

// Options tunes the classifier's thresholds and limits. Zero values fall
// back to the package defaults.
type Options struct {
	MatchThreshold  float64
	TropeThreshold  float64
	MaxTropeResults int
	MaxSuggestions  int
}

// Classifier orchestrates per-field matching over whole records.
type Classifier struct {
	matcher *Matcher
	opts    Options
}

// NewClassifier builds a Classifier over an already-loaded vocabulary.
func NewClassifier(vocab *Vocabulary, opts Options) *Classifier {
	return &Classifier{matcher: NewMatcher(vocab), opts: opts}
}

// Matcher exposes the underlying field matcher.
func (c *Classifier) Matcher() *Matcher {
	return c.matcher
}

// ClassifyBook classifies every present field of a record. Each field is
// handled independently: a failure in one, including a panic from malformed
// input, becomes a field error and the remaining fields still classify.
// The overall confidence is the mean of the per-field confidences, or zero
// when nothing matched.
func (c *Classifier) ClassifyBook(record Record) ClassificationResult {
	result := ClassificationResult{
		Confidence:  make(map[string]float64),
		Suggestions: make(map[string][]string),
	}

	c.safely(&result, FieldGenre, func() { c.classifyGenre(record, &result) })
	c.safely(&result, FieldSubgenre, func() { c.classifySubgenre(record, &result) })
	c.safely(&result, FieldTropes, func() { c.classifyTropes(record, &result) })
	c.safely(&result, FieldSpiceLevel, func() { c.classifySpice(record, &result) })

	if len(result.Confidence) > 0 {
		var sum float64
		for _, score := range result.Confidence {
			sum += score
		}
		result.OverallConfidence = sum / float64(len(result.Confidence))
	}
	return result
}

// safely runs one field's classification, converting any panic into a
// field error so a single bad field never takes down the whole record.
func (c *Classifier) safely(result *ClassificationResult, field string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, FieldError{
				Field:  field,
				Reason: fmt.Sprintf("internal classification error: %v", r),
			})
		}
	}()
	fn()
}

func (c *Classifier) classifyGenre(record Record, result *ClassificationResult) {
	if strings.TrimSpace(record.Genre) == "" {
		return
	}
	if match, ok := c.matcher.MatchGenre(record.Genre, c.opts.MatchThreshold); ok {
		result.Genre = &match
		result.Confidence[FieldGenre] = match.Confidence
		return
	}
	result.Errors = append(result.Errors, FieldError{
		Field:  FieldGenre,
		Input:  record.Genre,
		Reason: "no matching genre found",
	})
	if suggestions := c.matcher.SuggestGenres(record.Genre, c.opts.MaxSuggestions); len(suggestions) > 0 {
		result.Suggestions[FieldGenre] = suggestions
	}
}

func (c *Classifier) classifySubgenre(record Record, result *ClassificationResult) {
	if strings.TrimSpace(record.Subgenre) == "" {
		return
	}
	if match, ok := c.matcher.MatchSubgenre(record.Subgenre, c.opts.MatchThreshold); ok {
		result.Subgenre = &match
		result.Confidence[FieldSubgenre] = match.Confidence
		return
	}
	result.Errors = append(result.Errors, FieldError{
		Field:  FieldSubgenre,
		Input:  record.Subgenre,
		Reason: "no matching subgenre found",
	})
	if suggestions := c.matcher.SuggestSubgenres(record.Subgenre, c.opts.MaxSuggestions); len(suggestions) > 0 {
		result.Suggestions[FieldSubgenre] = suggestions
	}
}

func (c *Classifier) classifyTropes(record Record, result *ClassificationResult) {
	inputs, err := coerceTropes(record.Tropes)
	if err != nil {
		result.Errors = append(result.Errors, FieldError{
			Field:  FieldTropes,
			Input:  fmt.Sprint(record.Tropes),
			Reason: err.Error(),
		})
		return
	}
	if len(inputs) == 0 {
		return
	}

	matches, unmatched := c.matcher.MatchTropes(inputs, c.opts.TropeThreshold, c.opts.MaxTropeResults)
	result.Tropes = matches
	result.UnmatchedTropes = unmatched

	if len(matches) > 0 {
		var sum float64
		for _, m := range matches {
			sum += m.Confidence
		}
		result.Confidence[FieldTropes] = sum / float64(len(matches))
	}

	for _, input := range unmatched {
		result.Errors = append(result.Errors, FieldError{
			Field:  FieldTropes,
			Input:  input,
			Reason: "no matching trope found",
		})
		for _, suggestion := range c.matcher.SuggestTropes(input, c.opts.MaxSuggestions) {
			if !contains(result.Suggestions[FieldTropes], suggestion) {
				result.Suggestions[FieldTropes] = append(result.Suggestions[FieldTropes], suggestion)
			}
		}
	}
}

func (c *Classifier) classifySpice(record Record, result *ClassificationResult) {
	input, ok := coerceSpice(record.SpiceLevel)
	if !ok {
		result.Errors = append(result.Errors, FieldError{
			Field:  FieldSpiceLevel,
			Input:  fmt.Sprint(record.SpiceLevel),
			Reason: "spice level must be text or a number",
		})
		return
	}
	if strings.TrimSpace(input) == "" {
		return
	}

	if match, ok := c.matcher.MatchSpiceLevel(input); ok {
		result.Spice = &match
		result.Confidence[FieldSpiceLevel] = match.Confidence
		return
	}
	result.Errors = append(result.Errors, FieldError{
		Field:  FieldSpiceLevel,
		Input:  input,
		Reason: "unrecognized spice level notation",
	})
}

// coerceTropes normalizes the loose trope shapes: a string list, a mixed
// list from decoded JSON, a single string, or nothing at all.
func coerceTropes(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		inputs := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tropes must be a list of strings, found %T", item)
			}
			inputs = append(inputs, s)
		}
		return inputs, nil
	default:
		return nil, fmt.Errorf("tropes must be a list of strings, got %T", value)
	}
}

// coerceSpice renders the loose spice shapes as text for the matcher.
func coerceSpice(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case float64:
		if v == float64(int(v)) {
			return strconv.Itoa(int(v)), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

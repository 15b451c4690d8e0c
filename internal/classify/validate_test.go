package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBookData_ExactValuesPass(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{
		Genre:      "Romance",
		Subgenre:   "Dark Romance",
		Tropes:     []string{"Enemies to Lovers"},
		SpiceLevel: "4",
	}, ValidateOptions{})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Suggestions)

	assert.Equal(t, "Romance", result.Matched.Genre)
	assert.Equal(t, "Dark Romance", result.Matched.Subgenre)
	assert.Equal(t, []string{"Enemies to Lovers"}, result.Matched.Tropes)
	assert.Equal(t, 4, result.Matched.SpiceLevel)
}

func TestValidateBookData_CanonicalizesInput(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{
		Genre:  "romance",
		Tropes: []string{"enemys to lovers"},
	}, ValidateOptions{})

	assert.True(t, result.IsValid)
	assert.Equal(t, "Romance", result.Matched.Genre, "matched values are canonical, never the raw input")
	assert.Equal(t, []string{"Enemies to Lovers"}, result.Matched.Tropes)
}

func TestValidateBookData_UnmatchedGenreIsFatal(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{Genre: "mystical"}, ValidateOptions{})

	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, FieldGenre, result.Errors[0].Field)
	assert.NotEmpty(t, result.Suggestions[FieldGenre], "rejections carry near-miss alternatives")
	assert.Empty(t, result.Matched.Genre)
}

func TestValidateBookData_WeakGenreIsFatal(t *testing.T) {
	c := testClassifier(t)

	// "fantasmic" matches "Fantasy" around 0.67: above the match threshold,
	// below the genre acceptance threshold.
	result := c.ValidateBookData(Record{Genre: "fantasmic"}, ValidateOptions{})

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, FieldGenre, result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Reason, "Fantasy")

	// The near-accept still reports what would have been applied.
	assert.Equal(t, "Fantasy", result.Matched.Genre)
}

func TestValidateBookData_WeakSubgenreIsWarning(t *testing.T) {
	c := testClassifier(t)

	// "epos fantasia" matches "Epic Fantasy" around 0.69: just under the
	// subgenre acceptance threshold.
	result := c.ValidateBookData(Record{Subgenre: "epos fantasia"}, ValidateOptions{})

	assert.True(t, result.IsValid, "a weak subgenre never blocks the write")
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, FieldSubgenre, result.Warnings[0].Field)
	assert.Equal(t, "Epic Fantasy", result.Matched.Subgenre)
}

func TestValidateBookData_UnmatchedSubgenreIsWarning(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{Subgenre: "wwwww"}, ValidateOptions{})

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, FieldSubgenre, result.Warnings[0].Field)
}

func TestValidateBookData_UnmatchedTropesAreWarnings(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{
		Tropes: []string{"Found Family", "quantum baking"},
	}, ValidateOptions{})

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, FieldTropes, result.Warnings[0].Field)
	assert.Contains(t, result.Warnings[0].Input, "quantum baking")
	assert.Equal(t, []string{"Found Family"}, result.Matched.Tropes)
}

func TestValidateBookData_UnrecognizedSpiceIsWarning(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{SpiceLevel: "nonsense_xyz"}, ValidateOptions{})

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, FieldSpiceLevel, result.Warnings[0].Field)
	assert.Zero(t, result.Matched.SpiceLevel)
}

func TestValidateBookData_CustomThresholds(t *testing.T) {
	c := testClassifier(t)

	// With the bar lowered, the weak genre match passes cleanly.
	result := c.ValidateBookData(Record{Genre: "fantasmic"}, ValidateOptions{GenreThreshold: 0.65})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Fantasy", result.Matched.Genre)
}

func TestValidateBookData_EmptyRecord(t *testing.T) {
	c := testClassifier(t)

	result := c.ValidateBookData(Record{}, ValidateOptions{})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

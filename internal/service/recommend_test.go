package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

func TestRecommendationService_ForBook(t *testing.T) {
	st := testStore(t)
	idx := testSearchIndex(t)
	books := NewBookService(st, idx, testClassificationService(t), testLogger())
	svc := NewRecommendationService(st, idx, testLogger())
	ctx := context.Background()

	source, err := books.CreateBook(ctx, BookInput{
		Title:  "Throne of Ash",
		Author: "V. Ember",
		Genre:  "Fantasy",
		Tropes: []string{"Found Family"},
	})
	require.NoError(t, err)

	similar, err := books.CreateBook(ctx, BookInput{
		Title:  "Crown of Cinders",
		Author: "V. Ember",
		Genre:  "Fantasy",
		Tropes: []string{"Found Family"},
	})
	require.NoError(t, err)

	_, err = books.CreateBook(ctx, BookInput{
		Title:  "Small Town Sweethearts",
		Author: "W. Cozy",
		Genre:  "Romance",
	})
	require.NoError(t, err)

	recs, err := svc.ForBook(ctx, source.Book.ID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, similar.Book.ID, recs[0].ID)
	for _, rec := range recs {
		assert.NotEqual(t, source.Book.ID, rec.ID, "a book never recommends itself")
	}
}

func TestRecommendationService_ForBook_UnknownBook(t *testing.T) {
	svc := NewRecommendationService(testStore(t), testSearchIndex(t), testLogger())

	_, err := svc.ForBook(context.Background(), "book-missing", 5)
	require.ErrorIs(t, err, store.ErrBookNotFound)
}

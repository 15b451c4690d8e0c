package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

func TestGetRecommendations(t *testing.T) {
	ts := setupTestServer(t)
	source := ts.createTestBook(t, service.BookInput{
		Title:  "A Court of Ash",
		Author: "R. Ember",
		Genre:  "Fantasy",
		Tropes: []string{"Enemies to Lovers"},
	})
	similar := ts.createTestBook(t, service.BookInput{
		Title:  "A Court of Cinders",
		Author: "R. Ember",
		Genre:  "Fantasy",
		Tropes: []string{"Enemies to Lovers"},
	})
	ts.createTestBook(t, service.BookInput{
		Title:  "Tea Shop Murders",
		Author: "C. Cozy",
		Genre:  "Mystery",
	})

	resp := ts.api.Get("/api/v1/books/" + source.ID + "/recommendations")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RecommendationsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, source.ID, envelope.Data.BookID)
	require.NotEmpty(t, envelope.Data.Recommendations)
	assert.Equal(t, similar.ID, envelope.Data.Recommendations[0].ID)

	for _, rec := range envelope.Data.Recommendations {
		assert.NotEqual(t, source.ID, rec.ID, "a book never recommends itself")
	}
}

func TestGetRecommendations_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing/recommendations")
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	dragon := ts.createTestBook(t, service.BookInput{
		Title:  "The Dragon's Oath",
		Author: "A. Wyrm",
		Genre:  "Fantasy",
	})
	ts.createTestBook(t, service.BookInput{
		Title:  "Seaside Letters",
		Author: "B. Shore",
		Genre:  "Romance",
	})

	resp := ts.api.Get("/api/v1/search?q=dragon")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[search.Result]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint64(1), envelope.Data.Total)
	assert.Equal(t, dragon.ID, envelope.Data.Hits[0].ID)
}

func TestSearchBooks_GenreFilter(t *testing.T) {
	ts := setupTestServer(t)
	ts.createTestBook(t, service.BookInput{
		Title:  "Heart of the Court",
		Author: "C. Author",
		Genre:  "Fantasy",
	})
	ts.createTestBook(t, service.BookInput{
		Title:  "Heart of the City",
		Author: "C. Author",
		Genre:  "Romance",
	})

	resp := ts.api.Get("/api/v1/search?q=heart&genre=Romance")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[search.Result]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint64(1), envelope.Data.Total)
	assert.Equal(t, "Heart of the City", envelope.Data.Hits[0].Title)
}

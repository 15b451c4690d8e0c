package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

func TestCreateBook_CanonicalizesClassification(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"title":       "The Winter King",
		"author":      "A. Frost",
		"genre":       "fantasy",
		"subgenre":    "epic fantasy",
		"tropes":      []string{"enemies to lovers"},
		"spice_level": "3",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookWithWarnings]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)

	book := envelope.Data.Book
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Fantasy", book.Genre)
	assert.Equal(t, "Epic Fantasy", book.Subgenre)
	assert.Equal(t, []string{"Enemies to Lovers"}, book.Tropes)
	assert.Equal(t, 3, book.SpiceLevel)
	assert.Equal(t, "tbr", book.Status)
}

func TestCreateBook_RejectsUnmatchableGenre(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"title":  "Bad Genre",
		"author": "B. Author",
		"genre":  "mystical",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.NotNil(t, envelope.Details)
}

func TestCreateBook_RequiresTitle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"author": "No Title",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createTestBook(t, service.BookInput{
		Title:  "Fetch Me",
		Author: "C. Author",
		Genre:  "Romance",
	})

	resp := ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, book.ID, envelope.Data.ID)
	assert.Equal(t, "Fetch Me", envelope.Data.Title)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestUpdateBook_PartialPatch(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createTestBook(t, service.BookInput{
		Title:  "Patch Me",
		Author: "D. Author",
		Genre:  "Mystery",
	})

	resp := ts.api.Patch("/api/v1/books/"+book.ID, map[string]any{
		"status": "reading",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookWithWarnings]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	updated := envelope.Data.Book
	assert.Equal(t, "reading", updated.Status)
	assert.Equal(t, "Patch Me", updated.Title, "unpatched fields survive")
	assert.Equal(t, "Mystery", updated.Genre)
	assert.NotNil(t, updated.DateStarted)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createTestBook(t, service.BookInput{
		Title:  "Delete Me",
		Author: "E. Author",
	})

	resp := ts.api.Delete("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListBooks_FilterAndPaginate(t *testing.T) {
	ts := setupTestServer(t)
	for _, title := range []string{"One", "Two", "Three"} {
		ts.createTestBook(t, service.BookInput{Title: title, Author: "F. Author"})
	}
	ts.createTestBook(t, service.BookInput{
		Title:  "Reading Now",
		Author: "F. Author",
		Status: domain.StatusReading,
	})

	resp := ts.api.Get("/api/v1/books?status=tbr&limit=2")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Books, 2)
	assert.True(t, envelope.Data.HasMore)
	assert.Equal(t, 3, envelope.Data.Total)
	require.NotEmpty(t, envelope.Data.NextCursor)

	resp = ts.api.Get("/api/v1/books?status=tbr&limit=2&cursor=" + envelope.Data.NextCursor)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Books, 1)
	assert.False(t, envelope.Data.HasMore)
}

package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

func TestCheckAvailability(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createTestBook(t, service.BookInput{
		Title:  "Probe Me",
		Author: "A. Author",
	})

	resp := ts.api.Post("/api/v1/books/" + book.ID + "/availability")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AvailabilityResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, book.ID, envelope.Data.BookID)
	require.Len(t, envelope.Data.Sources, 2)

	bySource := make(map[string]bool, len(envelope.Data.Sources))
	for _, src := range envelope.Data.Sources {
		bySource[src.Source] = src.Available
		assert.False(t, src.CheckedAt.IsZero())
	}
	assert.True(t, bySource["kindle-unlimited"])
	assert.False(t, bySource["libby"])
}

func TestGetAvailability_ReturnsStoredSnapshots(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createTestBook(t, service.BookInput{
		Title:  "Snapshot",
		Author: "B. Author",
	})

	// Nothing checked yet.
	resp := ts.api.Get("/api/v1/books/" + book.ID + "/availability")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AvailabilityResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Sources)

	ts.api.Post("/api/v1/books/" + book.ID + "/availability")

	resp = ts.api.Get("/api/v1/books/" + book.ID + "/availability")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Sources, 2)
}

func TestCheckAvailability_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books/book-missing/availability")
	require.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.False(t, envelope.Success)
}

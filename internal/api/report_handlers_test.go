package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	"github.com/alexhouse-ua/shelfhelp-server/internal/report"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

func TestWeeklyReport(t *testing.T) {
	ts := setupTestServer(t)
	finished := ts.createTestBook(t, service.BookInput{
		Title:  "Done and Dusted",
		Author: "A. Author",
		Genre:  "Romance",
		Status: domain.StatusFinished,
		Rating: 4,
	})
	ts.createTestBook(t, service.BookInput{
		Title:  "Still Waiting",
		Author: "B. Author",
	})

	resp := ts.api.Get("/api/v1/reports/weekly")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ReportResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Report)

	r := envelope.Data.Report
	assert.Equal(t, report.PeriodWeekly, r.Period)
	require.Len(t, r.Finished, 1)
	assert.Equal(t, finished.ID, r.Finished[0].ID)
	assert.Equal(t, 1, r.QueueSize)
	assert.Len(t, r.Added, 2)
}

func TestMonthlyReport_Markdown(t *testing.T) {
	ts := setupTestServer(t)
	ts.createTestBook(t, service.BookInput{
		Title:  "Ink and Bone",
		Author: "C. Author",
		Status: domain.StatusFinished,
	})

	resp := ts.api.Get("/api/v1/reports/monthly?format=markdown")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ReportResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.Report)
	assert.True(t, strings.Contains(envelope.Data.Markdown, "Ink and Bone"))
	assert.True(t, strings.HasPrefix(envelope.Data.Markdown, "# Monthly Reading Report"))
}

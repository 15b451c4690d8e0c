package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testGenerator() *Generator {
	return &Generator{now: func() time.Time { return testNow }}
}

func finishedBook(id, title string, daysAgo int, rating float64, genre string, tropes ...string) *domain.Book {
	finished := testNow.AddDate(0, 0, -daysAgo)
	book := &domain.Book{
		Title:        title,
		Author:       "A. Author",
		Status:       domain.StatusFinished,
		Genre:        genre,
		Tropes:       tropes,
		Rating:       rating,
		DateAdded:    finished.AddDate(0, 0, -30),
		DateFinished: &finished,
	}
	book.ID = id
	return book
}

func TestGenerator_Weekly(t *testing.T) {
	g := testGenerator()

	inWindow := finishedBook("book_1", "Recent", 2, 5, "Romance", "Enemies to Lovers")
	outOfWindow := finishedBook("book_2", "Old", 20, 4, "Fantasy")
	reading := &domain.Book{Title: "Current", Author: "B", Status: domain.StatusReading}
	reading.ID = "book_3"
	queued := &domain.Book{Title: "Waiting", Author: "C", Status: domain.StatusTBR, DateAdded: testNow.AddDate(0, 0, -1)}
	queued.ID = "book_4"

	r := g.Weekly([]*domain.Book{inWindow, outOfWindow, reading, queued})

	assert.Equal(t, PeriodWeekly, r.Period)
	require.Len(t, r.Finished, 1)
	assert.Equal(t, "Recent", r.Finished[0].Title)
	require.Len(t, r.Reading, 1)
	assert.Equal(t, "Current", r.Reading[0].Title)
	require.Len(t, r.Added, 1)
	assert.Equal(t, "Waiting", r.Added[0].Title)
	assert.Equal(t, 1, r.QueueSize)
	assert.Equal(t, 5.0, r.AverageRating)
}

func TestGenerator_MonthlyWindowIsWider(t *testing.T) {
	g := testGenerator()
	book := finishedBook("book_1", "Three Weeks Ago", 21, 4, "Fantasy")

	weekly := g.Weekly([]*domain.Book{book})
	monthly := g.Monthly([]*domain.Book{book})

	assert.Empty(t, weekly.Finished)
	require.Len(t, monthly.Finished, 1)
	assert.Equal(t, PeriodMonthly, monthly.Period)
}

func TestGenerator_TopGenresAndTropes(t *testing.T) {
	g := testGenerator()

	books := []*domain.Book{
		finishedBook("b1", "One", 1, 4, "Romance", "Enemies to Lovers", "Slow Burn"),
		finishedBook("b2", "Two", 2, 3, "Romance", "Enemies to Lovers"),
		finishedBook("b3", "Three", 3, 5, "Fantasy", "Found Family"),
	}

	r := g.Weekly(books)

	require.NotEmpty(t, r.TopGenres)
	assert.Equal(t, Count{Value: "Romance", Count: 2}, r.TopGenres[0])
	require.NotEmpty(t, r.TopTropes)
	assert.Equal(t, Count{Value: "Enemies to Lovers", Count: 2}, r.TopTropes[0])
	assert.InDelta(t, 4.0, r.AverageRating, 1e-9)
}

func TestGenerator_DNFTracksSeparately(t *testing.T) {
	g := testGenerator()

	dnf := finishedBook("b1", "Abandoned", 1, 0, "Romance")
	dnf.Status = domain.StatusDNF

	r := g.Weekly([]*domain.Book{dnf})

	assert.Empty(t, r.Finished)
	require.Len(t, r.DidNotFinish, 1)
	assert.Equal(t, "Abandoned", r.DidNotFinish[0].Title)
	assert.Zero(t, r.AverageRating, "abandoned books never count toward the average")
}

func TestGenerator_EmptyLibrary(t *testing.T) {
	r := testGenerator().Weekly(nil)

	assert.Empty(t, r.Finished)
	assert.Zero(t, r.QueueSize)
	assert.Zero(t, r.AverageRating)
}

func TestReport_Markdown(t *testing.T) {
	g := testGenerator()
	r := g.Weekly([]*domain.Book{
		finishedBook("b1", "The Winter Keep", 1, 4.5, "Fantasy", "Found Family"),
	})

	md := r.Markdown()
	assert.Contains(t, md, "# Weekly Reading Report")
	assert.Contains(t, md, "## Finished (1)")
	assert.Contains(t, md, "The Winter Keep by A. Author (4.5 stars)")
	assert.Contains(t, md, "Average rating: 4.5")
	assert.Contains(t, md, "- Fantasy (1)")
	assert.Contains(t, md, "- Found Family (1)")
}

func TestReport_MarkdownEmptySections(t *testing.T) {
	md := testGenerator().Weekly(nil).Markdown()
	assert.Contains(t, md, "Nothing this period.")
	assert.Contains(t, md, "0 books waiting")
}

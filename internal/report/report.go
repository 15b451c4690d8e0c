// Package report renders weekly and monthly reading summaries from the
// library. Reports are computed on demand from book timestamps; nothing is
// stored between runs.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// Period identifies a report window.
type Period string

// Supported report periods.
const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// BookSummary is the slice of a book a report needs.
type BookSummary struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// Count pairs a value with how often it occurred.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Report is one generated reading summary.
type Report struct {
	Period        Period        `json:"period"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Finished      []BookSummary `json:"finished"`
	Added         []BookSummary `json:"added"`
	Reading       []BookSummary `json:"reading"`
	DidNotFinish  []BookSummary `json:"did_not_finish"`
	QueueSize     int           `json:"queue_size"`
	TopGenres     []Count       `json:"top_genres,omitempty"`
	TopTropes     []Count       `json:"top_tropes,omitempty"`
	AverageRating float64       `json:"average_rating,omitempty"`
}

// Generator produces reports. The clock is injectable for tests.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a generator using the system clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Weekly reports on the last seven days.
func (g *Generator) Weekly(books []*domain.Book) *Report {
	end := g.now().UTC()
	return g.generate(PeriodWeekly, end.AddDate(0, 0, -7), end, books)
}

// Monthly reports on the last calendar month.
func (g *Generator) Monthly(books []*domain.Book) *Report {
	end := g.now().UTC()
	return g.generate(PeriodMonthly, end.AddDate(0, -1, 0), end, books)
}

func (g *Generator) generate(period Period, start, end time.Time, books []*domain.Book) *Report {
	r := &Report{
		Period: period,
		Start:  start,
		End:    end,
	}

	genreCounts := make(map[string]int)
	tropeCounts := make(map[string]int)
	var ratingSum float64
	var ratingCount int

	for _, book := range books {
		summary := summarize(book)

		if book.IsQueued() {
			r.QueueSize++
		}
		if book.Status == domain.StatusReading {
			r.Reading = append(r.Reading, summary)
		}
		if !book.DateAdded.IsZero() && inWindow(book.DateAdded, start, end) {
			r.Added = append(r.Added, summary)
		}

		finishedAt := book.DateFinished
		if finishedAt == nil || !inWindow(*finishedAt, start, end) {
			continue
		}
		switch book.Status {
		case domain.StatusFinished:
			r.Finished = append(r.Finished, summary)
			if book.Genre != "" {
				genreCounts[book.Genre]++
			}
			for _, trope := range book.Tropes {
				tropeCounts[trope]++
			}
			if book.Rating > 0 {
				ratingSum += book.Rating
				ratingCount++
			}
		case domain.StatusDNF:
			r.DidNotFinish = append(r.DidNotFinish, summary)
		}
	}

	r.TopGenres = topCounts(genreCounts, 3)
	r.TopTropes = topCounts(tropeCounts, 5)
	if ratingCount > 0 {
		r.AverageRating = ratingSum / float64(ratingCount)
	}
	return r
}

// Markdown renders the report as a human-readable document.
func (r *Report) Markdown() string {
	var b strings.Builder

	title := "Weekly Reading Report"
	if r.Period == PeriodMonthly {
		title = "Monthly Reading Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%s to %s\n\n", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))

	fmt.Fprintf(&b, "## Finished (%d)\n\n", len(r.Finished))
	writeBookList(&b, r.Finished, true)
	if r.AverageRating > 0 {
		fmt.Fprintf(&b, "Average rating: %.1f\n\n", r.AverageRating)
	}

	if len(r.DidNotFinish) > 0 {
		fmt.Fprintf(&b, "## Did Not Finish (%d)\n\n", len(r.DidNotFinish))
		writeBookList(&b, r.DidNotFinish, false)
	}

	fmt.Fprintf(&b, "## Added (%d)\n\n", len(r.Added))
	writeBookList(&b, r.Added, false)

	fmt.Fprintf(&b, "## Currently Reading (%d)\n\n", len(r.Reading))
	writeBookList(&b, r.Reading, false)

	fmt.Fprintf(&b, "## Queue\n\n%d books waiting\n", r.QueueSize)

	if len(r.TopGenres) > 0 {
		b.WriteString("\n## Top Genres\n\n")
		for _, g := range r.TopGenres {
			fmt.Fprintf(&b, "- %s (%d)\n", g.Value, g.Count)
		}
	}
	if len(r.TopTropes) > 0 {
		b.WriteString("\n## Top Tropes\n\n")
		for _, t := range r.TopTropes {
			fmt.Fprintf(&b, "- %s (%d)\n", t.Value, t.Count)
		}
	}
	return b.String()
}

func writeBookList(b *strings.Builder, books []BookSummary, withRating bool) {
	if len(books) == 0 {
		b.WriteString("Nothing this period.\n\n")
		return
	}
	for _, book := range books {
		if withRating && book.Rating > 0 {
			fmt.Fprintf(b, "- %s by %s (%.1f stars)\n", book.Title, book.Author, book.Rating)
		} else {
			fmt.Fprintf(b, "- %s by %s\n", book.Title, book.Author)
		}
	}
	b.WriteString("\n")
}

func summarize(book *domain.Book) BookSummary {
	return BookSummary{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Genre:  book.Genre,
		Rating: book.Rating,
	}
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// topCounts returns the most frequent values, highest first. Ties resolve
// alphabetically so report output is deterministic.
func topCounts(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for value, count := range counts {
		out = append(out, Count{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

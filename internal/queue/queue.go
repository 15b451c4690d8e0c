// Package queue scores and orders the to-be-read list. Scoring is additive
// and explainable: every factor that contributes to a book's priority is
// reported back as a reason string, so a reordered queue is never a mystery.
package queue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// Weights tunes the scoring factors.
type Weights struct {
	Availability   float64 // Book is currently available at some source
	SeriesMomentum float64 // An earlier book in the same series was finished
	AuthorAffinity float64 // Scales the mean rating of finished books by the author
	TropeAffinity  float64 // Scales the share of tropes shared with well-rated finished books
	Staleness      float64 // Per-day bonus for time spent on the list
	StalenessCap   float64 // Upper bound on the staleness bonus
}

// DefaultWeights returns the standard scoring profile. Availability dominates
// because a borrowable book that goes back on the wait list is a missed
// window; staleness is a slow tiebreaker, not a driver.
func DefaultWeights() Weights {
	return Weights{
		Availability:   30,
		SeriesMomentum: 25,
		AuthorAffinity: 4, // Times the 0-5 mean rating, so up to 20
		TropeAffinity:  10,
		Staleness:      0.1,
		StalenessCap:   15,
	}
}

// Entry is one scored queue position.
type Entry struct {
	Book     *domain.Book `json:"book"`
	Position int          `json:"position"`
	Score    float64      `json:"score"`
	Reasons  []string     `json:"reasons,omitempty"`
}

// Scorer computes queue priority scores.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// NewScorer builds a scorer. Zero-value weights fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights, now: time.Now}
}

// Score rates one queued book against the rest of the library.
func (s *Scorer) Score(book *domain.Book, library []*domain.Book) (float64, []string) {
	var score float64
	var reasons []string

	for _, avail := range book.Availability {
		if avail.Available {
			score += s.weights.Availability
			reasons = append(reasons, fmt.Sprintf("available at %s", avail.Source))
			break
		}
	}

	if book.Series != "" && finishedEarlierInSeries(book, library) {
		score += s.weights.SeriesMomentum
		reasons = append(reasons, fmt.Sprintf("continues the %s series", book.Series))
	}

	if mean, n := authorMeanRating(book, library); n > 0 && mean > 0 {
		bonus := s.weights.AuthorAffinity * mean
		score += bonus
		reasons = append(reasons, fmt.Sprintf("author rated %.1f across %d finished books", mean, n))
	}

	if shared, total := sharedFavoriteTropes(book, library); shared > 0 {
		bonus := s.weights.TropeAffinity * float64(shared) / float64(total)
		score += bonus
		reasons = append(reasons, fmt.Sprintf("%d of %d tropes match favorites", shared, total))
	}

	if !book.DateAdded.IsZero() {
		days := s.now().Sub(book.DateAdded).Hours() / 24
		if days > 0 {
			bonus := min(days*s.weights.Staleness, s.weights.StalenessCap)
			score += bonus
			if bonus >= 1 {
				reasons = append(reasons, fmt.Sprintf("on the list for %d days", int(days)))
			}
		}
	}

	return score, reasons
}

// Prioritize scores every queued book and returns entries in priority order,
// highest score first. Equal scores keep their existing queue order.
func (s *Scorer) Prioritize(queued, library []*domain.Book) []Entry {
	entries := make([]Entry, 0, len(queued))
	for _, book := range queued {
		score, reasons := s.Score(book, library)
		entries = append(entries, Entry{Book: book, Score: score, Reasons: reasons})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// finishedEarlierInSeries reports whether the library holds a finished book
// in the same series with a lower series number.
func finishedEarlierInSeries(book *domain.Book, library []*domain.Book) bool {
	for _, other := range library {
		if other.ID == book.ID || other.Status != domain.StatusFinished {
			continue
		}
		if strings.EqualFold(other.Series, book.Series) && other.SeriesNumber < book.SeriesNumber {
			return true
		}
	}
	return false
}

// sharedFavoriteTropes counts how many of the book's tropes also appear on
// finished books rated 4 stars or higher. The denominator is the book's own
// trope count, so a two-trope book that hits both scores higher than a
// ten-trope book that hits two.
func sharedFavoriteTropes(book *domain.Book, library []*domain.Book) (shared, total int) {
	if len(book.Tropes) == 0 {
		return 0, 0
	}
	favorites := make(map[string]bool)
	for _, other := range library {
		if other.ID == book.ID || other.Status != domain.StatusFinished || other.Rating < 4 {
			continue
		}
		for _, trope := range other.Tropes {
			favorites[strings.ToLower(trope)] = true
		}
	}
	for _, trope := range book.Tropes {
		if favorites[strings.ToLower(trope)] {
			shared++
		}
	}
	return shared, len(book.Tropes)
}

// authorMeanRating averages the ratings of finished, rated books by the
// same author.
func authorMeanRating(book *domain.Book, library []*domain.Book) (float64, int) {
	if book.Author == "" {
		return 0, 0
	}
	var sum float64
	var n int
	for _, other := range library {
		if other.ID == book.ID || other.Status != domain.StatusFinished || other.Rating <= 0 {
			continue
		}
		if strings.EqualFold(other.Author, book.Author) {
			sum += other.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// Params configures a library search.
type Params struct {
	Query  string // User's search query
	Status string // Filter by exact reading status (empty = all)
	Genre  string // Filter by genre

	Limit  int
	Offset int
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{Limit: 20}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single matching book.
type Hit struct {
	ID     string   `json:"id"`
	Score  float64  `json:"score"`
	Title  string   `json:"title"`
	Author string   `json:"author,omitempty"`
	Genre  string   `json:"genre,omitempty"`
	Tropes []string `json:"tropes,omitempty"`
}

// Search executes a full-text search over the library.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildSearchQuery(params)
	request := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	request.Fields = []string{"title", "author", "genre", "tropes"}

	result, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  result.Total,
		TookMs: result.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(result.Hits)),
	}
	for _, hit := range result.Hits {
		out.Hits = append(out.Hits, Hit{
			ID:     hit.ID,
			Score:  hit.Score,
			Title:  fieldString(hit.Fields, "title"),
			Author: fieldString(hit.Fields, "author"),
			Genre:  fieldString(hit.Fields, "genre"),
			Tropes: fieldStrings(hit.Fields, "tropes"),
		})
	}
	return out, nil
}

// buildSearchQuery combines the text query with exact filters.
func buildSearchQuery(params Params) query.Query {
	var musts []query.Query

	text := strings.TrimSpace(params.Query)
	if text == "" {
		musts = append(musts, bleve.NewMatchAllQuery())
	} else {
		fields := []struct {
			name  string
			boost float64
		}{
			{"title", 3.0},
			{"author", 2.0},
			{"series", 1.5},
			{"tropes", 1.5},
			{"genre", 1.0},
			{"subgenre", 1.0},
			{"description", 1.0},
		}
		var perField []query.Query
		for _, f := range fields {
			mq := bleve.NewMatchQuery(text)
			mq.SetField(f.name)
			mq.SetBoost(f.boost)
			perField = append(perField, mq)
		}
		musts = append(musts, bleve.NewDisjunctionQuery(perField...))
	}

	if params.Status != "" {
		tq := bleve.NewTermQuery(params.Status)
		tq.SetField("status")
		musts = append(musts, tq)
	}
	if params.Genre != "" {
		mq := bleve.NewMatchQuery(params.Genre)
		mq.SetField("genre")
		musts = append(musts, mq)
	}

	if len(musts) == 1 {
		return musts[0]
	}
	return bleve.NewConjunctionQuery(musts...)
}

// Recommendation is one more-like-this suggestion.
type Recommendation struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author,omitempty"`
	Genre  string  `json:"genre,omitempty"`
}

// Recommend returns books similar to the given one, scored by shared
// taxonomy and author. The source book is excluded from the results.
func (s *Index) Recommend(ctx context.Context, book *domain.Book, limit int) ([]Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	var likes []query.Query
	addMatch := func(field, text string, boost float64) {
		if strings.TrimSpace(text) == "" {
			return
		}
		mq := bleve.NewMatchQuery(text)
		mq.SetField(field)
		mq.SetBoost(boost)
		likes = append(likes, mq)
	}

	addMatch("genre", book.Genre, 2.0)
	addMatch("subgenre", book.Subgenre, 1.5)
	addMatch("author", book.Author, 1.5)
	addMatch("series", book.Series, 1.0)
	for _, trope := range book.Tropes {
		addMatch("tropes", trope, 1.0)
	}
	if len(likes) == 0 {
		return nil, nil
	}

	boolean := bleve.NewBooleanQuery()
	boolean.AddMust(bleve.NewDisjunctionQuery(likes...))
	boolean.AddMustNot(bleve.NewDocIDQuery([]string{book.ID}))

	request := bleve.NewSearchRequestOptions(boolean, limit, 0, false)
	request.Fields = []string{"title", "author", "genre"}

	result, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	recs := make([]Recommendation, 0, len(result.Hits))
	for _, hit := range result.Hits {
		recs = append(recs, Recommendation{
			ID:     hit.ID,
			Score:  hit.Score,
			Title:  fieldString(hit.Fields, "title"),
			Author: fieldString(hit.Fields, "author"),
			Genre:  fieldString(hit.Fields, "genre"),
		})
	}
	return recs, nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func fieldStrings(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

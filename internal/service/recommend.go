package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/alexhouse-ua/shelfhelp-server/internal/errors"
	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

// RecommendationService suggests books from the library similar to a given
// one, ranked by shared taxonomy and author.
type RecommendationService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(st *store.Store, index *search.Index, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{store: st, index: index, logger: logger}
}

// ForBook returns up to limit library books similar to the given one.
func (s *RecommendationService) ForBook(ctx context.Context, bookID string, limit int) ([]search.Recommendation, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("search index not configured")
	}
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	recs, err := s.index.Recommend(ctx, book, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []search.Recommendation{}
	}
	return recs, nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/alexhouse-ua/shelfhelp-server/internal/availability"
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

// AvailabilityService checks where a book can be read or borrowed and
// persists the snapshots on the book record.
type AvailabilityService struct {
	store   *store.Store
	checker *availability.Checker
	logger  *slog.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(st *store.Store, checker *availability.Checker, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{store: st, checker: checker, logger: logger}
}

// Sources lists the configured availability sources.
func (s *AvailabilityService) Sources() []string {
	return s.checker.Sources()
}

// CheckBook probes every source for one book and stores the results. With
// force set, cached snapshots are ignored and every source is re-probed.
func (s *AvailabilityService) CheckBook(ctx context.Context, bookID string, force bool) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	results := s.checker.CheckBook(ctx, book, force)
	for _, result := range results {
		book.SetAvailability(result)
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("availability checked",
			"book", bookID,
			"sources", len(results),
			"available", countAvailable(results))
	}
	return book, nil
}

func countAvailable(results []domain.SourceAvailability) int {
	n := 0
	for _, r := range results {
		if r.Available {
			n++
		}
	}
	return n
}

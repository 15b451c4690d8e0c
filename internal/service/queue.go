package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	domainerrors "github.com/alexhouse-ua/shelfhelp-server/internal/errors"
	"github.com/alexhouse-ua/shelfhelp-server/internal/queue"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

// QueueService manages the TBR queue: score-based prioritization over the
// whole library, plus explicit manual reordering.
type QueueService struct {
	store  *store.Store
	scorer *queue.Scorer
	logger *slog.Logger
}

// NewQueueService creates a new queue service.
func NewQueueService(st *store.Store, scorer *queue.Scorer, logger *slog.Logger) *QueueService {
	if scorer == nil {
		scorer = queue.NewScorer(queue.DefaultWeights())
	}
	return &QueueService{store: st, scorer: scorer, logger: logger}
}

// Prioritized returns the queued books in recommended reading order, with
// per-book scores and human-readable reasons. The stored queue positions are
// untouched; call Apply to persist the recommended order.
func (s *QueueService) Prioritized(ctx context.Context) ([]queue.Entry, error) {
	queued := s.store.QueuedBooks(ctx)
	library := s.store.AllBooks(ctx)
	return s.scorer.Prioritize(queued, library), nil
}

// Apply persists the scorer's recommended order as the books' queue positions.
func (s *QueueService) Apply(ctx context.Context) ([]queue.Entry, error) {
	entries, err := s.Prioritized(ctx)
	if err != nil {
		return nil, err
	}
	books := make([]*domain.Book, 0, len(entries))
	for _, e := range entries {
		e.Book.QueuePosition = e.Position
		e.Book.Touch()
		books = append(books, e.Book)
	}
	if len(books) > 0 {
		if err := s.store.UpdateBooks(ctx, books); err != nil {
			return nil, fmt.Errorf("apply queue order: %w", err)
		}
	}
	if s.logger != nil {
		s.logger.Info("queue order applied", "books", len(books))
	}
	return entries, nil
}

// Reorder persists an explicit manual ordering. The ID list must name
// queued TBR books; books missing from the list keep their relative order
// after the listed ones.
func (s *QueueService) Reorder(ctx context.Context, ids []string) ([]*domain.Book, error) {
	queued := s.store.QueuedBooks(ctx)
	byID := make(map[string]*domain.Book, len(queued))
	for _, b := range queued {
		byID[b.ID] = b
	}

	ordered := make([]*domain.Book, 0, len(queued))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		book, ok := byID[id]
		if !ok {
			return nil, domainerrors.Validationf("book %q is not in the queue", id)
		}
		if seen[id] {
			return nil, domainerrors.Validationf("book %q listed twice", id)
		}
		seen[id] = true
		ordered = append(ordered, book)
	}
	for _, b := range queued {
		if !seen[b.ID] {
			ordered = append(ordered, b)
		}
	}

	for i, b := range ordered {
		b.QueuePosition = i + 1
		b.Touch()
	}
	if err := s.store.UpdateBooks(ctx, ordered); err != nil {
		return nil, fmt.Errorf("reorder queue: %w", err)
	}
	return ordered, nil
}

// Enqueue places a TBR book at the end of the queue.
func (s *QueueService) Enqueue(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Status != domain.StatusTBR {
		return nil, domainerrors.Validationf("only tbr books can be queued, %q is %q", bookID, book.Status)
	}
	if book.IsQueued() {
		return book, nil
	}
	book.QueuePosition = len(s.store.QueuedBooks(ctx)) + 1
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Dequeue removes a book from the queue and closes the position gap.
func (s *QueueService) Dequeue(ctx context.Context, bookID string) error {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if !book.IsQueued() {
		return nil
	}
	removed := book.QueuePosition
	book.QueuePosition = 0
	book.Touch()

	updates := []*domain.Book{book}
	for _, b := range s.store.QueuedBooks(ctx) {
		if b.ID != bookID && b.QueuePosition > removed {
			b.QueuePosition--
			b.Touch()
			updates = append(updates, b)
		}
	}
	if err := s.store.UpdateBooks(ctx, updates); err != nil {
		return fmt.Errorf("dequeue book: %w", err)
	}
	return nil
}

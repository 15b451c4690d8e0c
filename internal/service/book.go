package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/classify"
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	domainerrors "github.com/alexhouse-ua/shelfhelp-server/internal/errors"
	"github.com/alexhouse-ua/shelfhelp-server/internal/id"
	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
	"github.com/alexhouse-ua/shelfhelp-server/internal/validation"
)

// BookService orchestrates book CRUD: classification validation on the way
// in, canonical values on the stored record, and the search index kept in
// sync with every mutation.
type BookService struct {
	store          *store.Store
	index          *search.Index
	classification *ClassificationService
	logger         *slog.Logger
	validator      *validation.Validator
}

// NewBookService creates a new book service.
func NewBookService(st *store.Store, index *search.Index, classification *ClassificationService, logger *slog.Logger) *BookService {
	return &BookService{
		store:          st,
		index:          index,
		classification: classification,
		logger:         logger,
		validator:      validation.New(),
	}
}

// BookInput is the writable surface of a book. Tropes and SpiceLevel accept
// loose shapes; classification canonicalizes them before anything persists.
type BookInput struct {
	Title        string               `json:"title" validate:"required,max=500"`
	Author       string               `json:"author" validate:"required,max=200"`
	Series       string               `json:"series"`
	SeriesNumber float64              `json:"series_number"`
	Status       domain.ReadingStatus `json:"status"`
	Description  string               `json:"description"`
	ISBN         string               `json:"isbn"`
	Genre        string               `json:"genre"`
	Subgenre     string               `json:"subgenre"`
	Tropes       any                  `json:"tropes"`
	SpiceLevel   any                  `json:"spice_level"`
	Rating       float64              `json:"rating" validate:"gte=0,lte=5"`
	Notes        string               `json:"notes"`
}

// BookResult pairs a persisted book with the classification verdict that
// admitted it, so callers can surface warnings without a second call.
type BookResult struct {
	Book       *domain.Book
	Validation classify.ValidationResult
}

// CreateBook validates the input's classification values, canonicalizes
// them, and persists the book. A failed genre match rejects the create with
// suggestions attached; subgenre and trope misses persist with warnings.
func (s *BookService) CreateBook(ctx context.Context, input BookInput) (*BookResult, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = domain.StatusTBR
	}
	if !input.Status.Valid() {
		return nil, domainerrors.Validationf("invalid status %q", input.Status)
	}

	validation := s.classification.Validate(record(input))
	if !validation.IsValid {
		return nil, domainerrors.Validation("book classification rejected").WithDetails(validation)
	}

	book := &domain.Book{
		Title:        input.Title,
		Author:       input.Author,
		Series:       input.Series,
		SeriesNumber: input.SeriesNumber,
		Status:       input.Status,
		Description:  input.Description,
		ISBN:         input.ISBN,
		Rating:       input.Rating,
		Notes:        input.Notes,
		DateAdded:    time.Now().UTC(),
	}
	book.ID = id.MustGenerate("book")
	book.InitTimestamps()
	applyMatched(book, validation)
	applyStatusDates(book, nil)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	s.indexBook(book)

	return &BookResult{Book: book, Validation: validation}, nil
}

// UpdateBook replaces a book's writable fields, re-running classification
// validation on the new values.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input BookInput) (*BookResult, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	existing, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = existing.Status
	}
	if !input.Status.Valid() {
		return nil, domainerrors.Validationf("invalid status %q", input.Status)
	}

	validation := s.classification.Validate(record(input))
	if !validation.IsValid {
		return nil, domainerrors.Validation("book classification rejected").WithDetails(validation)
	}

	previousStatus := existing.Status
	existing.Title = input.Title
	existing.Author = input.Author
	existing.Series = input.Series
	existing.SeriesNumber = input.SeriesNumber
	existing.Status = input.Status
	existing.Description = input.Description
	existing.ISBN = input.ISBN
	existing.Rating = input.Rating
	existing.Notes = input.Notes
	applyMatched(existing, validation)
	applyStatusDates(existing, &previousStatus)
	existing.Touch()

	if err := s.store.UpdateBook(ctx, existing); err != nil {
		return nil, err
	}
	s.indexBook(existing)

	return &BookResult{Book: existing, Validation: validation}, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// ListBooks returns a filtered, paginated listing.
func (s *BookService) ListBooks(ctx context.Context, opts store.ListOptions) (store.PaginatedResult[*domain.Book], error) {
	return s.store.ListBooks(ctx, opts)
}

// DeleteBook removes a book from the library and the search index.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteBook(bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from search index", "id", bookID, "error", err)
		}
	}
	return nil
}

// SearchBooks runs a full-text query over the library.
func (s *BookService) SearchBooks(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("search index not configured")
	}
	return s.index.Search(ctx, params)
}

// ReindexAll rebuilds the search index from the library. Called at startup
// and after external edits reload the store.
func (s *BookService) ReindexAll(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	books := s.store.AllBooks(ctx)
	docs := make([]*search.BookDocument, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.DocumentFromBook(book))
	}
	if err := s.index.IndexBooks(docs); err != nil {
		return fmt.Errorf("reindex library: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("library reindexed", "books", len(docs))
	}
	return nil
}

func (s *BookService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(search.DocumentFromBook(book)); err != nil && s.logger != nil {
		s.logger.Warn("failed to index book", "id", book.ID, "error", err)
	}
}

func record(input BookInput) classify.Record {
	return classify.Record{
		Genre:      input.Genre,
		Subgenre:   input.Subgenre,
		Tropes:     input.Tropes,
		SpiceLevel: input.SpiceLevel,
	}
}

// applyMatched writes the canonical classification values onto the book.
// Fields that did not match stay empty rather than carrying raw input.
func applyMatched(book *domain.Book, validation classify.ValidationResult) {
	book.Genre = validation.Matched.Genre
	book.Subgenre = validation.Matched.Subgenre
	book.Tropes = validation.Matched.Tropes
	book.SpiceLevel = validation.Matched.SpiceLevel
}

// applyStatusDates stamps reading dates on status transitions.
func applyStatusDates(book *domain.Book, previous *domain.ReadingStatus) {
	now := time.Now().UTC()
	switch book.Status {
	case domain.StatusReading:
		if book.DateStarted == nil {
			book.DateStarted = &now
		}
	case domain.StatusFinished, domain.StatusDNF:
		if previous == nil || *previous != book.Status {
			if book.DateStarted == nil {
				book.DateStarted = &now
			}
			if book.DateFinished == nil {
				book.DateFinished = &now
			}
		}
	case domain.StatusTBR:
		// Back on the list: clear the finish date, keep any start date.
		if previous != nil && *previous != domain.StatusTBR {
			book.DateFinished = nil
		}
	}
}

// Package store persists the book library as a single JSON document on disk.
//
// The whole library is held in memory and flushed atomically (write to a
// temp file, then rename) on every mutation, with a rolling set of snapshot
// copies kept in a history directory. The file is the source of truth: it is
// deliberately human-readable so it can be edited outside the server, and
// Reload picks such edits up.
package store

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// libraryVersion is the on-disk document version.
const libraryVersion = 1

// libraryFile is the on-disk document shape.
type libraryFile struct {
	Version int            `json:"version"`
	Books   []*domain.Book `json:"books"`
}

// Config holds the store's file locations.
type Config struct {
	Path         string // Library JSON file
	HistoryDir   string // Snapshot directory; empty disables snapshots
	HistoryLimit int    // Snapshots to retain (0 means keep all)
}

// Store is the in-memory library backed by one JSON file.
type Store struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	books map[string]*domain.Book
	order []string // IDs in insertion order; the stable listing and cursor order
}

// Open loads the library file at cfg.Path, creating an empty library if the
// file does not exist yet.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: library path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	if cfg.HistoryDir != "" {
		if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	s := &Store{
		cfg:    cfg,
		logger: logger,
		books:  make(map[string]*domain.Book),
	}

	if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return nil, err
		}
	} else if err := s.load(); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("library opened", "path", cfg.Path, "books", len(s.order))
	}
	return s, nil
}

// Close is a no-op; every mutation is flushed when it happens. It exists so
// the store satisfies shutdown plumbing.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing library")
	}
	return nil
}

// Path returns the library file location, for watchers.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Reload replaces the in-memory library with the current file contents.
// Called when the file changes underneath the server.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads and indexes the library file. Callers hold the write lock,
// except during Open when the store is not yet shared.
func (s *Store) load() error {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return fmt.Errorf("read library file: %w", err)
	}

	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse library file: %w", err)
	}

	books := make(map[string]*domain.Book, len(file.Books))
	order := make([]string, 0, len(file.Books))
	for _, book := range file.Books {
		if book.ID == "" {
			return fmt.Errorf("library file contains a book without an id")
		}
		if _, dup := books[book.ID]; dup {
			return fmt.Errorf("library file contains duplicate book id %s", book.ID)
		}
		books[book.ID] = book
		order = append(order, book.ID)
	}

	s.books = books
	s.order = order
	return nil
}

// save snapshots the current file, then atomically replaces it.
// Callers hold the write lock, except during Open.
func (s *Store) save() error {
	if err := s.snapshot(); err != nil {
		return err
	}

	file := libraryFile{Version: libraryVersion, Books: make([]*domain.Book, 0, len(s.order))}
	for _, id := range s.order {
		file.Books = append(file.Books, s.books[id])
	}

	data, err := json.Marshal(file, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}

	tmp := s.cfg.Path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) //#nosec G304 -- Path comes from configuration
	if err != nil {
		return fmt.Errorf("create temp library file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp library file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp library file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp library file: %w", err)
	}
	if err := os.Rename(tmp, s.cfg.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace library file: %w", err)
	}
	return nil
}

// snapshot copies the current library file into the history directory and
// prunes the oldest snapshots beyond the retention limit.
func (s *Store) snapshot() error {
	if s.cfg.HistoryDir == "" {
		return nil
	}
	data, err := os.ReadFile(s.cfg.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read library for snapshot: %w", err)
	}

	name := fmt.Sprintf("books-%s.json", time.Now().UTC().Format("20060102T150405.000000000"))
	if err := os.WriteFile(filepath.Join(s.cfg.HistoryDir, name), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return s.pruneSnapshots()
}

func (s *Store) pruneSnapshots() error {
	if s.cfg.HistoryLimit <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(s.cfg.HistoryDir, "books-*.json"))
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(matches) <= s.cfg.HistoryLimit {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-s.cfg.HistoryLimit] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("prune snapshot: %w", err)
		}
	}
	return nil
}

// CreateBook adds a new book and flushes the library.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.ID == "" {
		return ErrInvalidInput.WithMessage("book id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[book.ID]; exists {
		return ErrBookExists
	}

	s.books[book.ID] = cloneBook(book)
	s.order = append(s.order, book.ID)
	if err := s.save(); err != nil {
		delete(s.books, book.ID)
		s.order = s.order[:len(s.order)-1]
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("author", book.Author),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return cloneBook(book), nil
}

// UpdateBook replaces an existing book and flushes the library.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.books[book.ID]
	if !ok {
		return ErrBookNotFound
	}

	s.books[book.ID] = cloneBook(book)
	if err := s.save(); err != nil {
		s.books[book.ID] = previous
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book updated",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
		)
	}
	return nil
}

// UpdateBooks replaces several books in one flush. Used for queue reordering
// where writing one file per book would churn the history.
func (s *Store) UpdateBooks(ctx context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]*domain.Book, len(books))
	for _, book := range books {
		existing, ok := s.books[book.ID]
		if !ok {
			return ErrBookNotFound.WithMessage(fmt.Sprintf("book %s not found", book.ID))
		}
		previous[book.ID] = existing
	}
	for _, book := range books {
		s.books[book.ID] = cloneBook(book)
	}
	if err := s.save(); err != nil {
		for id, book := range previous {
			s.books[id] = book
		}
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "books updated", slog.Int("count", len(books)))
	}
	return nil
}

// DeleteBook removes a book and flushes the library.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrBookNotFound
	}

	delete(s.books, id)
	index := -1
	for i, existing := range s.order {
		if existing == id {
			index = i
			break
		}
	}
	s.order = append(s.order[:index], s.order[index+1:]...)

	if err := s.save(); err != nil {
		s.books[id] = book
		s.order = append(s.order, id)
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book deleted", slog.String("id", id))
	}
	return nil
}

// ListOptions filters a listing. Zero values mean "no filter".
type ListOptions struct {
	Status     domain.ReadingStatus
	Genre      string
	Author     string
	Pagination PaginationParams
}

// ListBooks returns one page of books in insertion order, after filtering.
func (s *Store) ListBooks(_ context.Context, opts ListOptions) (PaginatedResult[*domain.Book], error) {
	opts.Pagination.Validate()
	afterID, err := DecodeCursor(opts.Pagination.Cursor)
	if err != nil {
		return PaginatedResult[*domain.Book]{}, ErrInvalidInput.WithMessage("invalid cursor").WithCause(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []*domain.Book
	for _, id := range s.order {
		book := s.books[id]
		if opts.Status != "" && book.Status != opts.Status {
			continue
		}
		if opts.Genre != "" && book.Genre != opts.Genre {
			continue
		}
		if opts.Author != "" && book.Author != opts.Author {
			continue
		}
		filtered = append(filtered, book)
	}

	start := 0
	if afterID != "" {
		for i, book := range filtered {
			if book.ID == afterID {
				start = i + 1
				break
			}
		}
	}

	end := min(start+opts.Pagination.Limit, len(filtered))
	result := PaginatedResult[*domain.Book]{
		Items:   make([]*domain.Book, 0, end-start),
		HasMore: end < len(filtered),
		Total:   len(filtered),
	}
	for _, book := range filtered[start:end] {
		result.Items = append(result.Items, cloneBook(book))
	}
	if result.HasMore && len(result.Items) > 0 {
		result.NextCursor = EncodeCursor(result.Items[len(result.Items)-1].ID)
	}
	return result, nil
}

// AllBooks returns every book in insertion order.
func (s *Store) AllBooks(_ context.Context) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*domain.Book, 0, len(s.order))
	for _, id := range s.order {
		books = append(books, cloneBook(s.books[id]))
	}
	return books
}

// QueuedBooks returns the unread queue ordered by position.
func (s *Store) QueuedBooks(_ context.Context) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var queued []*domain.Book
	for _, id := range s.order {
		book := s.books[id]
		if book.IsQueued() {
			queued = append(queued, cloneBook(book))
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].QueuePosition < queued[j].QueuePosition
	})
	return queued
}

// Count returns the number of books in the library.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// cloneBook copies a book deeply enough that callers cannot mutate the
// store's copy through shared slices.
func cloneBook(b *domain.Book) *domain.Book {
	c := *b
	if b.Tropes != nil {
		c.Tropes = append([]string(nil), b.Tropes...)
	}
	if b.Availability != nil {
		c.Availability = append([]domain.SourceAvailability(nil), b.Availability...)
	}
	return &c
}

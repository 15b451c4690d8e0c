package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Config{
		Path:         filepath.Join(dir, "books.json"),
		HistoryDir:   filepath.Join(dir, "history"),
		HistoryLimit: 3,
	}, nil)
	require.NoError(t, err)
	return s
}

func testBook(id, title string) *domain.Book {
	book := &domain.Book{
		Title:  title,
		Author: "Test Author",
		Status: domain.StatusTBR,
		Genre:  "Romance",
		Tropes: []string{"Enemies to Lovers"},
	}
	book.ID = id
	book.InitTimestamps()
	book.DateAdded = time.Now().UTC()
	return book
}

func TestStore_CreateAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	book := testBook("book_1", "The Test")
	require.NoError(t, s.CreateBook(ctx, book))

	got, err := s.GetBook(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "The Test", got.Title)
	assert.Equal(t, []string{"Enemies to Lovers"}, got.Tropes)
}

func TestStore_CreateDuplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, testBook("book_1", "A")))
	err := s.CreateBook(ctx, testBook("book_1", "B"))
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestStore_CreateWithoutID(t *testing.T) {
	s := testStore(t)
	err := s.CreateBook(context.Background(), &domain.Book{Title: "No ID"})
	require.Error(t, err)
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 400, storeErr.HTTPCode())
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.GetBook(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStore_Update(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	book := testBook("book_1", "Before")
	require.NoError(t, s.CreateBook(ctx, book))

	book.Title = "After"
	book.Status = domain.StatusReading
	require.NoError(t, s.UpdateBook(ctx, book))

	got, err := s.GetBook(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, domain.StatusReading, got.Status)
}

func TestStore_UpdateMissing(t *testing.T) {
	s := testStore(t)
	err := s.UpdateBook(context.Background(), testBook("ghost", "Ghost"))
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, testBook("book_1", "A")))
	require.NoError(t, s.DeleteBook(ctx, "book_1"))

	_, err := s.GetBook(ctx, "book_1")
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.ErrorIs(t, s.DeleteBook(ctx, "book_1"), ErrBookNotFound)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Path: filepath.Join(dir, "books.json")}
	ctx := context.Background()

	s, err := Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateBook(ctx, testBook("book_1", "Persistent")))
	require.NoError(t, s.Close())

	reopened, err := Open(cfg, nil)
	require.NoError(t, err)
	got, err := reopened.GetBook(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "Persistent", got.Title)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, testBook("book_1", "Original")))

	got, err := s.GetBook(ctx, "book_1")
	require.NoError(t, err)
	got.Title = "Mutated"
	got.Tropes[0] = "Mutated Trope"

	fresh, err := s.GetBook(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "Original", fresh.Title)
	assert.Equal(t, "Enemies to Lovers", fresh.Tropes[0])
}

func TestStore_ListBooks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testBook("book_a", "Alpha")
	b := testBook("book_b", "Beta")
	b.Status = domain.StatusFinished
	b.Genre = "Fantasy"
	c := testBook("book_c", "Gamma")
	for _, book := range []*domain.Book{a, b, c} {
		require.NoError(t, s.CreateBook(ctx, book))
	}

	all, err := s.ListBooks(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.False(t, all.HasMore)

	tbr, err := s.ListBooks(ctx, ListOptions{Status: domain.StatusTBR})
	require.NoError(t, err)
	require.Len(t, tbr.Items, 2)
	assert.Equal(t, "Alpha", tbr.Items[0].Title)

	fantasy, err := s.ListBooks(ctx, ListOptions{Genre: "Fantasy"})
	require.NoError(t, err)
	require.Len(t, fantasy.Items, 1)
	assert.Equal(t, "Beta", fantasy.Items[0].Title)
}

func TestStore_ListBooksPagination(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ids := []string{"book_1", "book_2", "book_3", "book_4", "book_5"}
	for _, id := range ids {
		require.NoError(t, s.CreateBook(ctx, testBook(id, id)))
	}

	page1, err := s.ListBooks(ctx, ListOptions{Pagination: PaginationParams{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := s.ListBooks(ctx, ListOptions{Pagination: PaginationParams{Limit: 2, Cursor: page1.NextCursor}})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "book_3", page2.Items[0].ID)
	assert.True(t, page2.HasMore)

	page3, err := s.ListBooks(ctx, ListOptions{Pagination: PaginationParams{Limit: 2, Cursor: page2.NextCursor}})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestStore_ListBooksInvalidCursor(t *testing.T) {
	s := testStore(t)
	_, err := s.ListBooks(context.Background(), ListOptions{Pagination: PaginationParams{Cursor: "%%%not-base64%%%"}})
	require.Error(t, err)
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 400, storeErr.HTTPCode())
}

func TestStore_QueuedBooks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := testBook("book_1", "First")
	first.QueuePosition = 2
	second := testBook("book_2", "Second")
	second.QueuePosition = 1
	finished := testBook("book_3", "Done")
	finished.Status = domain.StatusFinished
	finished.QueuePosition = 3
	for _, book := range []*domain.Book{first, second, finished} {
		require.NoError(t, s.CreateBook(ctx, book))
	}

	queued := s.QueuedBooks(ctx)
	require.Len(t, queued, 2, "finished books are not queued")
	assert.Equal(t, "Second", queued[0].Title)
	assert.Equal(t, "First", queued[1].Title)
}

func TestStore_UpdateBooks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testBook("book_a", "A")
	b := testBook("book_b", "B")
	require.NoError(t, s.CreateBook(ctx, a))
	require.NoError(t, s.CreateBook(ctx, b))

	a.QueuePosition = 2
	b.QueuePosition = 1
	require.NoError(t, s.UpdateBooks(ctx, []*domain.Book{a, b}))

	got, err := s.GetBook(ctx, "book_a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.QueuePosition)
}

func TestStore_UpdateBooksMissingIsAtomic(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testBook("book_a", "A")
	require.NoError(t, s.CreateBook(ctx, a))

	a.Title = "Changed"
	err := s.UpdateBooks(ctx, []*domain.Book{a, testBook("ghost", "Ghost")})
	require.ErrorIs(t, err, ErrBookNotFound)

	got, err := s.GetBook(ctx, "book_a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title, "a failed batch must not apply partially")
}

func TestStore_HistorySnapshots(t *testing.T) {
	dir := t.TempDir()
	historyDir := filepath.Join(dir, "history")
	s, err := Open(Config{
		Path:         filepath.Join(dir, "books.json"),
		HistoryDir:   historyDir,
		HistoryLimit: 2,
	}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	// Each mutation snapshots the previous file state; the retention limit
	// caps how many survive.
	for i, id := range []string{"b1", "b2", "b3", "b4"} {
		book := testBook(id, id)
		book.DateAdded = book.DateAdded.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.CreateBook(ctx, book))
	}

	matches, err := filepath.Glob(filepath.Join(historyDir, "books-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.json")
	s, err := Open(Config{Path: path}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, testBook("book_1", "Before Edit")))

	// Simulate an external edit to the library file.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "Before Edit", "After Edit", 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o600))

	require.NoError(t, s.Reload())
	got, err := s.GetBook(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "After Edit", got.Title)
}

func TestStore_ReloadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.json")
	s, err := Open(Config{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateBook(context.Background(), testBook("book_1", "Kept")))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	assert.Error(t, s.Reload())
}

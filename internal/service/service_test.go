package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/classify"
	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

const testVocabularyYAML = `
Genres:
  - Genre: Romance
    Subgenre: Contemporary Romance
  - Genre: Romance
    Subgenre: Dark Romance
  - Genre: Fantasy
    Subgenre: Epic Fantasy
  - Genre: Mystery
    Subgenre: Cozy Mystery
  - Genre: Science Fiction
    Subgenre: Space Opera
Tropes:
  - Tropes:
      - Enemies to Lovers
      - Friends to Lovers
      - Grumpy Sunshine
  - Tropes:
      - Found Family
      - Second Chance
      - Forced Proximity
Spice_Levels:
  - Label: Clean
  - Label: Mild
  - Label: Moderate
  - Label: Steamy
  - Label: Explicit
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClassificationService(t *testing.T) *ClassificationService {
	t.Helper()
	vocab, err := classify.ParseVocabulary([]byte(testVocabularyYAML))
	require.NoError(t, err)
	return newClassificationService(vocab, ClassificationConfig{}, testLogger())
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(store.Config{
		Path:       filepath.Join(dir, "books.json"),
		HistoryDir: filepath.Join(dir, "history"),
	}, testLogger())
	require.NoError(t, err)
	return st
}

func testSearchIndex(t *testing.T) *search.Index {
	t.Helper()
	idx, err := search.NewIndex(search.Options{
		DataPath: t.TempDir(),
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func testBookService(t *testing.T) *BookService {
	t.Helper()
	return NewBookService(testStore(t), testSearchIndex(t), testClassificationService(t), testLogger())
}

package api

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/alexhouse-ua/shelfhelp-server/internal/availability"
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
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
Tropes:
  - Tropes:
      - Enemies to Lovers
      - Found Family
      - Grumpy Sunshine
Spice_Levels:
  - Label: Clean
  - Label: Mild
  - Label: Moderate
  - Label: Steamy
  - Label: Explicit
`

// testEnvelope mirrors the response envelope for unmarshaling in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the detailed error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api humatest.TestAPI
	st  *store.Store
}

type stubProber struct {
	name      string
	available bool
}

func (p *stubProber) Name() string { return p.name }

func (p *stubProber) Probe(_ context.Context, _ *domain.Book) (domain.SourceAvailability, error) {
	return domain.SourceAvailability{
		Source:    p.name,
		Available: p.available,
		CheckedAt: time.Now().UTC(),
	}, nil
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	st, err := store.Open(store.Config{
		Path:       filepath.Join(dir, "books.json"),
		HistoryDir: filepath.Join(dir, "history"),
	}, logger)
	require.NoError(t, err)

	idx, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(dir, "index"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	vocabPath := filepath.Join(dir, "classifications.yaml")
	require.NoError(t, os.WriteFile(vocabPath, []byte(testVocabularyYAML), 0o600))

	classification, err := service.NewClassificationService(vocabPath, service.ClassificationConfig{}, logger)
	require.NoError(t, err)

	checker := availability.NewChecker([]availability.Prober{
		&stubProber{name: "kindle-unlimited", available: true},
		&stubProber{name: "libby", available: false},
	}, nil, logger)

	services := &Services{
		Classification: classification,
		Book:           service.NewBookService(st, idx, classification, logger),
		Queue:          service.NewQueueService(st, nil, logger),
		Availability:   service.NewAvailabilityService(st, checker, logger),
		Report:         service.NewReportService(st, nil, logger),
		Recommendation: service.NewRecommendationService(st, idx, logger),
	}

	s := NewServer(st, services, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		st:     st,
	}
}

// createTestBook adds a book through the service layer and returns it.
func (ts *testServer) createTestBook(t *testing.T, input service.BookInput) *domain.Book {
	t.Helper()
	result, err := ts.services.Book.CreateBook(context.Background(), input)
	require.NoError(t, err)
	return result.Book
}


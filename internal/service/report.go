package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/alexhouse-ua/shelfhelp-server/internal/errors"
	"github.com/alexhouse-ua/shelfhelp-server/internal/report"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

// ReportService generates reading activity reports over the library.
type ReportService struct {
	store     *store.Store
	generator *report.Generator
	logger    *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(st *store.Store, generator *report.Generator, logger *slog.Logger) *ReportService {
	if generator == nil {
		generator = report.NewGenerator()
	}
	return &ReportService{store: st, generator: generator, logger: logger}
}

// Generate builds a report for the requested period.
func (s *ReportService) Generate(ctx context.Context, period report.Period) (*report.Report, error) {
	books := s.store.AllBooks(ctx)
	switch period {
	case report.PeriodWeekly:
		return s.generator.Weekly(books), nil
	case report.PeriodMonthly:
		return s.generator.Monthly(books), nil
	default:
		return nil, domainerrors.Validationf("unknown report period %q", period)
	}
}

// GenerateMarkdown builds a report and renders it as Markdown.
func (s *ReportService) GenerateMarkdown(ctx context.Context, period report.Period) (string, error) {
	r, err := s.Generate(ctx, period)
	if err != nil {
		return "", err
	}
	return r.Markdown(), nil
}

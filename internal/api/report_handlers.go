package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/report"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getWeeklyReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/weekly",
		Summary:     "Weekly report",
		Description: "Returns reading activity for the last seven days",
		Tags:        []string{"Reports"},
	}, s.handleWeeklyReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMonthlyReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/monthly",
		Summary:     "Monthly report",
		Description: "Returns reading activity for the last month",
		Tags:        []string{"Reports"},
	}, s.handleMonthlyReport)
}

// === DTOs ===

type ReportInput struct {
	Format string `query:"format" doc:"Response format: json (default) or markdown"`
}

type ReportResponse struct {
	Report   *report.Report `json:"report,omitempty" doc:"Structured report"`
	Markdown string         `json:"markdown,omitempty" doc:"Markdown rendering when format=markdown"`
}

type ReportOutput struct {
	Body ReportResponse
}

// === Handlers ===

func (s *Server) handleWeeklyReport(ctx context.Context, input *ReportInput) (*ReportOutput, error) {
	return s.buildReport(ctx, report.PeriodWeekly, input.Format)
}

func (s *Server) handleMonthlyReport(ctx context.Context, input *ReportInput) (*ReportOutput, error) {
	return s.buildReport(ctx, report.PeriodMonthly, input.Format)
}

func (s *Server) buildReport(ctx context.Context, period report.Period, format string) (*ReportOutput, error) {
	if format == "markdown" {
		md, err := s.services.Report.GenerateMarkdown(ctx, period)
		if err != nil {
			return nil, err
		}
		return &ReportOutput{Body: ReportResponse{Markdown: md}}, nil
	}

	r, err := s.services.Report.Generate(ctx, period)
	if err != nil {
		return nil, err
	}
	return &ReportOutput{Body: ReportResponse{Report: r}}, nil
}

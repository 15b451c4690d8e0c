package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	libHealth := s.checkLibrary(ctx)
	components["library"] = libHealth
	if libHealth.Status != "healthy" {
		overall = "unhealthy"
	}

	searchHealth := s.checkSearchIndex(ctx)
	components["search"] = searchHealth
	if searchHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if searchHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	vocabHealth := s.checkVocabulary()
	components["vocabulary"] = vocabHealth
	if vocabHealth.Status != "healthy" && overall == "healthy" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkLibrary verifies the book store is accessible.
func (s *Server) checkLibrary(_ context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "library store not configured",
		}
	}

	start := time.Now()
	count := s.store.Count()
	latency := time.Since(start)

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: formatBookCount(count),
	}
}

// checkSearchIndex verifies the search index is reachable through the book service.
func (s *Server) checkSearchIndex(ctx context.Context) ComponentHealth {
	if s.services == nil || s.services.Book == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "search not configured",
		}
	}

	start := time.Now()
	_, err := s.services.Book.SearchBooks(ctx, search.Params{Limit: 1})
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkVocabulary verifies the classification vocabulary is loaded.
func (s *Server) checkVocabulary() ComponentHealth {
	if s.services == nil || s.services.Classification == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "classification vocabulary not configured",
		}
	}

	available := s.services.Classification.Available()
	if len(available.Genres) == 0 {
		return ComponentHealth{
			Status:  "unhealthy",
			Message: "vocabulary has no genres",
		}
	}

	return ComponentHealth{Status: "healthy"}
}

func formatBookCount(count int) string {
	switch count {
	case 0:
		return "library is empty"
	case 1:
		return "1 book"
	default:
		return formatInt(count) + " books"
	}
}

func formatInt(n int) string {
	// Simple int to string without importing strconv
	if n == 0 {
		return "0"
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

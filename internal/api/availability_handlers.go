package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

func (s *Server) registerAvailabilityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookAvailability",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/availability",
		Summary:     "Get availability",
		Description: "Returns the stored availability snapshots for a book",
		Tags:        []string{"Availability"},
	}, s.handleGetAvailability)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkBookAvailability",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/availability",
		Summary:     "Check availability",
		Description: "Probes every configured source for the book and stores fresh snapshots",
		Tags:        []string{"Availability"},
	}, s.handleCheckAvailability)
}

// === DTOs ===

type GetAvailabilityInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type CheckAvailabilityInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Force bool   `query:"force" doc:"Bypass cached results and re-probe every source"`
}

type SourceAvailabilityResponse struct {
	Source    string    `json:"source" doc:"Availability source name"`
	Available bool      `json:"available" doc:"Whether the book appears available"`
	Detail    string    `json:"detail,omitempty" doc:"What the probe saw"`
	CheckedAt time.Time `json:"checked_at" doc:"When the source was last probed"`
}

type AvailabilityResponse struct {
	BookID  string                       `json:"book_id" doc:"Book ID"`
	Sources []SourceAvailabilityResponse `json:"sources" doc:"Per-source snapshots"`
}

type AvailabilityOutput struct {
	Body AvailabilityResponse
}

// === Handlers ===

func (s *Server) handleGetAvailability(ctx context.Context, input *GetAvailabilityInput) (*AvailabilityOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AvailabilityOutput{Body: mapAvailabilityResponse(book)}, nil
}

func (s *Server) handleCheckAvailability(ctx context.Context, input *CheckAvailabilityInput) (*AvailabilityOutput, error) {
	book, err := s.services.Availability.CheckBook(ctx, input.ID, input.Force)
	if err != nil {
		return nil, err
	}

	return &AvailabilityOutput{Body: mapAvailabilityResponse(book)}, nil
}

func mapAvailabilityResponse(book *domain.Book) AvailabilityResponse {
	sources := make([]SourceAvailabilityResponse, len(book.Availability))
	for i, sa := range book.Availability {
		sources[i] = SourceAvailabilityResponse{
			Source:    sa.Source,
			Available: sa.Available,
			Detail:    sa.Detail,
			CheckedAt: sa.CheckedAt,
		}
	}
	return AvailabilityResponse{
		BookID:  book.ID,
		Sources: sources,
	}
}

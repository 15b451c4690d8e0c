package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/queue"
)

func (s *Server) registerQueueRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getQueue",
		Method:      http.MethodGet,
		Path:        "/api/v1/queue",
		Summary:     "Get TBR queue",
		Description: "Returns the queue in recommended reading order with per-book scores and reasons",
		Tags:        []string{"Queue"},
	}, s.handleGetQueue)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyQueueOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/queue/apply",
		Summary:     "Apply recommended order",
		Description: "Persists the recommended order as the stored queue positions",
		Tags:        []string{"Queue"},
	}, s.handleApplyQueue)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderQueue",
		Method:      http.MethodPost,
		Path:        "/api/v1/queue/reorder",
		Summary:     "Reorder queue",
		Description: "Persists an explicit manual ordering of queued books",
		Tags:        []string{"Queue"},
	}, s.handleReorderQueue)
}

// === DTOs ===

type QueueEntryResponse struct {
	Book     BookResponse `json:"book" doc:"The queued book"`
	Position int          `json:"position" doc:"1-based recommended position"`
	Score    float64      `json:"score" doc:"Prioritization score"`
	Reasons  []string     `json:"reasons,omitempty" doc:"Why the book scored this position"`
}

type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries" doc:"Queue in recommended order"`
}

type QueueOutput struct {
	Body QueueResponse
}

type ReorderQueueRequest struct {
	BookIDs []string `json:"book_ids" minItems:"1" validate:"required,min=1" doc:"Book IDs in desired order"`
}

type ReorderQueueInput struct {
	Body ReorderQueueRequest
}

type ReorderQueueResponse struct {
	Books []BookResponse `json:"books" doc:"Queue in the new stored order"`
}

type ReorderQueueOutput struct {
	Body ReorderQueueResponse
}

// === Handlers ===

func (s *Server) handleGetQueue(ctx context.Context, _ *struct{}) (*QueueOutput, error) {
	entries, err := s.services.Queue.Prioritized(ctx)
	if err != nil {
		return nil, err
	}

	return &QueueOutput{Body: mapQueueResponse(entries)}, nil
}

func (s *Server) handleApplyQueue(ctx context.Context, _ *struct{}) (*QueueOutput, error) {
	entries, err := s.services.Queue.Apply(ctx)
	if err != nil {
		return nil, err
	}

	return &QueueOutput{Body: mapQueueResponse(entries)}, nil
}

func (s *Server) handleReorderQueue(ctx context.Context, input *ReorderQueueInput) (*ReorderQueueOutput, error) {
	books, err := s.services.Queue.Reorder(ctx, input.Body.BookIDs)
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = mapBookResponse(b)
	}

	return &ReorderQueueOutput{Body: ReorderQueueResponse{Books: resp}}, nil
}

func mapQueueResponse(entries []queue.Entry) QueueResponse {
	resp := make([]QueueEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = QueueEntryResponse{
			Book:     mapBookResponse(e.Book),
			Position: e.Position,
			Score:    e.Score,
			Reasons:  e.Reasons,
		}
	}
	return QueueResponse{Entries: resp}
}

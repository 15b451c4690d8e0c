package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns library books similar to the given one, ranked by shared taxonomy and author",
		Tags:        []string{"Recommendations"},
	}, s.handleGetRecommendations)
}

// === DTOs ===

type GetRecommendationsInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Limit int    `query:"limit" doc:"Maximum recommendations to return (default 5)"`
}

type RecommendationsResponse struct {
	BookID          string                  `json:"book_id" doc:"Source book ID"`
	Recommendations []search.Recommendation `json:"recommendations" doc:"Similar books, best match first"`
}

type RecommendationsOutput struct {
	Body RecommendationsResponse
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *GetRecommendationsInput) (*RecommendationsOutput, error) {
	recs, err := s.services.Recommendation.ForBook(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &RecommendationsOutput{Body: RecommendationsResponse{
		BookID:          input.ID,
		Recommendations: recs,
	}}, nil
}

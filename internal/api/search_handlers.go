package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over titles, authors, descriptions, and taxonomy",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)
}

// === DTOs ===

type SearchBooksInput struct {
	Query  string `query:"q" doc:"Search query"`
	Status string `query:"status" doc:"Filter by reading status"`
	Genre  string `query:"genre" doc:"Filter by canonical genre"`
	Limit  int    `query:"limit" doc:"Maximum hits to return (default 20)"`
	Offset int    `query:"offset" doc:"Offset into the result set"`
}

type SearchBooksOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	result, err := s.services.Book.SearchBooks(ctx, search.Params{
		Query:  input.Query,
		Status: input.Status,
		Genre:  input.Genre,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchBooksOutput{Body: *result}, nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/classify"
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a filtered, paginated listing of the library",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book after validating its classification against the vocabulary",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates a book's fields, re-validating classification values",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the library",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse is the API shape of a library book.
type BookResponse struct {
	ID            string                      `json:"id" doc:"Book ID"`
	Title         string                      `json:"title" doc:"Title"`
	Author        string                      `json:"author" doc:"Author"`
	Series        string                      `json:"series,omitempty" doc:"Series name"`
	SeriesNumber  float64                     `json:"series_number,omitempty" doc:"Position in series"`
	Status        string                      `json:"status" doc:"Reading status: tbr, reading, finished, or dnf"`
	Description   string                      `json:"description,omitempty" doc:"Description"`
	ISBN          string                      `json:"isbn,omitempty" doc:"ISBN"`
	Genre         string                      `json:"genre,omitempty" doc:"Canonical genre"`
	Subgenre      string                      `json:"subgenre,omitempty" doc:"Canonical subgenre"`
	Tropes        []string                    `json:"tropes,omitempty" doc:"Canonical tropes"`
	SpiceLevel    int                         `json:"spice_level,omitempty" doc:"Spice level 1-5"`
	QueuePosition int                         `json:"queue_position,omitempty" doc:"TBR queue position"`
	Rating        float64                     `json:"rating,omitempty" doc:"Star rating"`
	Notes         string                      `json:"notes,omitempty" doc:"Personal notes"`
	DateAdded     time.Time                   `json:"date_added" doc:"When the book was added"`
	DateStarted   *time.Time                  `json:"date_started,omitempty" doc:"When reading started"`
	DateFinished  *time.Time                  `json:"date_finished,omitempty" doc:"When reading finished"`
	Availability  []domain.SourceAvailability `json:"availability,omitempty" doc:"Per-source availability snapshots"`
	CreatedAt     time.Time                   `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time                   `json:"updated_at" doc:"Last update time"`
}

// BookRequest is the writable surface of a book. Classification fields take
// free text and are canonicalized against the vocabulary before storage.
type BookRequest struct {
	Title        string   `json:"title" validate:"required,max=500" doc:"Title"`
	Author       string   `json:"author" validate:"required,max=200" doc:"Author"`
	Series       string   `json:"series,omitempty" doc:"Series name"`
	SeriesNumber float64  `json:"series_number,omitempty" doc:"Position in series"`
	Status       string   `json:"status,omitempty" doc:"Reading status: tbr, reading, finished, or dnf"`
	Description  string   `json:"description,omitempty" doc:"Description"`
	ISBN         string   `json:"isbn,omitempty" doc:"ISBN"`
	Genre        string   `json:"genre,omitempty" doc:"Genre (free text, fuzzily matched)"`
	Subgenre     string   `json:"subgenre,omitempty" doc:"Subgenre (free text, fuzzily matched)"`
	Tropes       []string `json:"tropes,omitempty" doc:"Tropes (free text, fuzzily matched)"`
	SpiceLevel   any      `json:"spice_level,omitempty" doc:"Spice level: digit, keyword, or pepper emoji"`
	Rating       float64  `json:"rating,omitempty" validate:"gte=0,lte=5" doc:"Star rating"`
	Notes        string   `json:"notes,omitempty" doc:"Personal notes"`
}

// BookWithWarnings pairs a book with any classification warnings raised
// while validating it.
type BookWithWarnings struct {
	Book        BookResponse        `json:"book" doc:"The stored book"`
	Warnings    []string            `json:"warnings,omitempty" doc:"Non-fatal classification issues"`
	Suggestions map[string][]string `json:"suggestions,omitempty" doc:"Near-miss vocabulary suggestions per field"`
}

type CreateBookInput struct {
	Body BookRequest
}

type BookOutput struct {
	Body BookWithWarnings
}

type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type GetBookOutput struct {
	Body BookResponse
}

// UpdateBookRequest uses pointers so omitted fields keep their stored values.
type UpdateBookRequest struct {
	Title        *string   `json:"title,omitempty" doc:"Title"`
	Author       *string   `json:"author,omitempty" doc:"Author"`
	Series       *string   `json:"series,omitempty" doc:"Series name"`
	SeriesNumber *float64  `json:"series_number,omitempty" doc:"Position in series"`
	Status       *string   `json:"status,omitempty" doc:"Reading status"`
	Description  *string   `json:"description,omitempty" doc:"Description"`
	ISBN         *string   `json:"isbn,omitempty" doc:"ISBN"`
	Genre        *string   `json:"genre,omitempty" doc:"Genre (free text)"`
	Subgenre     *string   `json:"subgenre,omitempty" doc:"Subgenre (free text)"`
	Tropes       *[]string `json:"tropes,omitempty" doc:"Tropes (free text)"`
	SpiceLevel   any       `json:"spice_level,omitempty" doc:"Spice level"`
	Rating       *float64  `json:"rating,omitempty" doc:"Star rating"`
	Notes        *string   `json:"notes,omitempty" doc:"Personal notes"`
}

type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type ListBooksInput struct {
	Status string `query:"status" doc:"Filter by reading status"`
	Genre  string `query:"genre" doc:"Filter by canonical genre"`
	Author string `query:"author" doc:"Filter by author"`
	Limit  int    `query:"limit" doc:"Page size (default 100, max 1000)"`
	Cursor string `query:"cursor" doc:"Pagination cursor from a previous page"`
}

type ListBooksResponse struct {
	Books      []BookResponse `json:"books" doc:"One page of books"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
	Total      int            `json:"total" doc:"Total books matching the filter"`
}

type ListBooksOutput struct {
	Body ListBooksResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	opts := store.ListOptions{
		Status: domain.ReadingStatus(input.Status),
		Genre:  input.Genre,
		Author: input.Author,
		Pagination: store.PaginationParams{
			Limit:  input.Limit,
			Cursor: input.Cursor,
		},
	}

	page, err := s.services.Book.ListBooks(ctx, opts)
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(page.Items))
	for i, b := range page.Items {
		books[i] = mapBookResponse(b)
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:      books,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Total:      page.Total,
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	result, err := s.services.Book.CreateBook(ctx, bookInput(input.Body))
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookWithWarnings(result)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*GetBookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetBookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	existing, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	merged := mergeBookUpdate(existing, input.Body)
	result, err := s.services.Book.UpdateBook(ctx, input.ID, merged)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookWithWarnings(result)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Mappers ===

func bookInput(req BookRequest) service.BookInput {
	var tropes any
	if req.Tropes != nil {
		tropes = req.Tropes
	}
	return service.BookInput{
		Title:        req.Title,
		Author:       req.Author,
		Series:       req.Series,
		SeriesNumber: req.SeriesNumber,
		Status:       domain.ReadingStatus(req.Status),
		Description:  req.Description,
		ISBN:         req.ISBN,
		Genre:        req.Genre,
		Subgenre:     req.Subgenre,
		Tropes:       tropes,
		SpiceLevel:   req.SpiceLevel,
		Rating:       req.Rating,
		Notes:        req.Notes,
	}
}

// mergeBookUpdate overlays a partial update onto the stored book. Raw
// classification fields default to the stored canonical values, which match
// the vocabulary exactly and so pass validation unchanged.
func mergeBookUpdate(book *domain.Book, req UpdateBookRequest) service.BookInput {
	input := service.BookInput{
		Title:        book.Title,
		Author:       book.Author,
		Series:       book.Series,
		SeriesNumber: book.SeriesNumber,
		Status:       book.Status,
		Description:  book.Description,
		ISBN:         book.ISBN,
		Genre:        book.Genre,
		Subgenre:     book.Subgenre,
		Rating:       book.Rating,
		Notes:        book.Notes,
	}
	if book.Tropes != nil {
		input.Tropes = book.Tropes
	}
	if book.SpiceLevel > 0 {
		input.SpiceLevel = book.SpiceLevel
	}

	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Author != nil {
		input.Author = *req.Author
	}
	if req.Series != nil {
		input.Series = *req.Series
	}
	if req.SeriesNumber != nil {
		input.SeriesNumber = *req.SeriesNumber
	}
	if req.Status != nil {
		input.Status = domain.ReadingStatus(*req.Status)
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.ISBN != nil {
		input.ISBN = *req.ISBN
	}
	if req.Genre != nil {
		input.Genre = *req.Genre
	}
	if req.Subgenre != nil {
		input.Subgenre = *req.Subgenre
	}
	if req.Tropes != nil {
		input.Tropes = *req.Tropes
	}
	if req.SpiceLevel != nil {
		input.SpiceLevel = req.SpiceLevel
	}
	if req.Rating != nil {
		input.Rating = *req.Rating
	}
	if req.Notes != nil {
		input.Notes = *req.Notes
	}
	return input
}

func mapBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Series:        b.Series,
		SeriesNumber:  b.SeriesNumber,
		Status:        string(b.Status),
		Description:   b.Description,
		ISBN:          b.ISBN,
		Genre:         b.Genre,
		Subgenre:      b.Subgenre,
		Tropes:        b.Tropes,
		SpiceLevel:    b.SpiceLevel,
		QueuePosition: b.QueuePosition,
		Rating:        b.Rating,
		Notes:         b.Notes,
		DateAdded:     b.DateAdded,
		DateStarted:   b.DateStarted,
		DateFinished:  b.DateFinished,
		Availability:  b.Availability,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func mapBookWithWarnings(result *service.BookResult) BookWithWarnings {
	return BookWithWarnings{
		Book:        mapBookResponse(result.Book),
		Warnings:    warningStrings(result.Validation),
		Suggestions: result.Validation.Suggestions,
	}
}

func warningStrings(validation classify.ValidationResult) []string {
	if len(validation.Warnings) == 0 {
		return nil
	}
	warnings := make([]string, len(validation.Warnings))
	for i, w := range validation.Warnings {
		warnings[i] = w.String()
	}
	return warnings
}

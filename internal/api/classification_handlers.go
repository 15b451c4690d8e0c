package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/classify"
)

func (s *Server) registerClassificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAvailableClassifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/classifications",
		Summary:     "List classifications",
		Description: "Returns the controlled vocabulary of genres, subgenres, tropes, and spice levels",
		Tags:        []string{"Classifications"},
	}, s.handleGetClassifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "matchClassification",
		Method:      http.MethodPost,
		Path:        "/api/v1/classifications/match",
		Summary:     "Match free-text classification",
		Description: "Fuzzily matches free-text classification values against the vocabulary without storing anything",
		Tags:        []string{"Classifications"},
	}, s.handleMatchClassification)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateClassification",
		Method:      http.MethodPost,
		Path:        "/api/v1/classifications/validate",
		Summary:     "Validate classification",
		Description: "Runs the persistence acceptance policy over a record and reports errors, warnings, and suggestions",
		Tags:        []string{"Classifications"},
	}, s.handleValidateClassification)
}

// === DTOs ===

type ClassificationsOutput struct {
	Body classify.Classifications
}

// ClassificationRequest carries free-text classification values. Tropes and
// spice level accept the loose shapes found in scraped or AI-assisted data.
type ClassificationRequest struct {
	Genre      string `json:"genre,omitempty" doc:"Genre (free text)"`
	Subgenre   string `json:"subgenre,omitempty" doc:"Subgenre (free text)"`
	Tropes     any    `json:"tropes,omitempty" doc:"Tropes: list of strings or a single string"`
	SpiceLevel any    `json:"spice_level,omitempty" doc:"Spice level: digit, keyword, or pepper emoji"`
}

type MatchClassificationInput struct {
	Body ClassificationRequest
}

type MatchClassificationOutput struct {
	Body classify.ClassificationResult
}

type ValidateClassificationInput struct {
	Body ClassificationRequest
}

type ValidateClassificationOutput struct {
	Body classify.ValidationResult
}

// === Handlers ===

func (s *Server) handleGetClassifications(_ context.Context, _ *struct{}) (*ClassificationsOutput, error) {
	return &ClassificationsOutput{Body: s.services.Classification.Available()}, nil
}

func (s *Server) handleMatchClassification(_ context.Context, input *MatchClassificationInput) (*MatchClassificationOutput, error) {
	result := s.services.Classification.Classify(classificationRecord(input.Body))
	return &MatchClassificationOutput{Body: result}, nil
}

func (s *Server) handleValidateClassification(_ context.Context, input *ValidateClassificationInput) (*ValidateClassificationOutput, error) {
	result := s.services.Classification.Validate(classificationRecord(input.Body))
	return &ValidateClassificationOutput{Body: result}, nil
}

func classificationRecord(req ClassificationRequest) classify.Record {
	return classify.Record{
		Genre:      req.Genre,
		Subgenre:   req.Subgenre,
		Tropes:     req.Tropes,
		SpiceLevel: req.SpiceLevel,
	}
}

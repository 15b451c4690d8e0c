// Package service provides the business logic layer for the reading list:
// book management, classification, queueing, availability, reports, and
// recommendations.
package service

import (
	"log/slog"

	"github.com/alexhouse-ua/shelfhelp-server/internal/classify"
)

// ClassificationService wraps the matching engine with the configured
// thresholds. The vocabulary loads once at startup; a load failure is fatal
// rather than degraded, because silently accepting unvalidated taxonomy
// values is worse than refusing to start.
type ClassificationService struct {
	classifier *classify.Classifier
	validate   classify.ValidateOptions
	logger     *slog.Logger
}

// ClassificationConfig carries the matching thresholds.
type ClassificationConfig struct {
	MatchThreshold    float64
	GenreThreshold    float64
	SubgenreThreshold float64
	TropeThreshold    float64
	MaxTropeResults   int
	MaxSuggestions    int
}

// NewClassificationService loads the vocabulary and builds the service.
func NewClassificationService(vocabPath string, cfg ClassificationConfig, logger *slog.Logger) (*ClassificationService, error) {
	vocab, err := classify.LoadVocabulary(vocabPath)
	if err != nil {
		return nil, err
	}
	return newClassificationService(vocab, cfg, logger), nil
}

// newClassificationService builds the service over an already-loaded
// vocabulary. Tests use this to avoid fixture files.
func newClassificationService(vocab *classify.Vocabulary, cfg ClassificationConfig, logger *slog.Logger) *ClassificationService {
	classifier := classify.NewClassifier(vocab, classify.Options{
		MatchThreshold:  cfg.MatchThreshold,
		TropeThreshold:  cfg.MatchThreshold,
		MaxTropeResults: cfg.MaxTropeResults,
		MaxSuggestions:  cfg.MaxSuggestions,
	})
	return &ClassificationService{
		classifier: classifier,
		validate: classify.ValidateOptions{
			GenreThreshold:    cfg.GenreThreshold,
			SubgenreThreshold: cfg.SubgenreThreshold,
			TropeThreshold:    cfg.TropeThreshold,
		},
		logger: logger,
	}
}

// Classify runs the full classification cascade over a record.
func (s *ClassificationService) Classify(record classify.Record) classify.ClassificationResult {
	result := s.classifier.ClassifyBook(record)
	if len(result.Errors) > 0 && s.logger != nil {
		s.logger.Debug("classification produced field errors",
			"errors", len(result.Errors),
			"overall_confidence", result.OverallConfidence,
		)
	}
	return result
}

// Validate classifies a record and applies the persistence acceptance policy.
func (s *ClassificationService) Validate(record classify.Record) classify.ValidationResult {
	return s.classifier.ValidateBookData(record, s.validate)
}

// Available returns the controlled vocabulary for clients.
func (s *ClassificationService) Available() classify.Classifications {
	return s.classifier.Matcher().Vocabulary().AvailableClassifications()
}

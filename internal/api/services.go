package api

import (
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Classification *service.ClassificationService
	Book           *service.BookService
	Queue          *service.QueueService
	Availability   *service.AvailabilityService
	Report         *service.ReportService
	Recommendation *service.RecommendationService
}

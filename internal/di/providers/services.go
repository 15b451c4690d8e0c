package providers

import (
	"github.com/samber/do/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/availability"
	"github.com/alexhouse-ua/shelfhelp-server/internal/config"
	"github.com/alexhouse-ua/shelfhelp-server/internal/logger"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

// ProvideClassificationService provides the fuzzy classification service.
// A missing or malformed vocabulary file fails startup: every write path
// depends on the taxonomy being loaded.
func ProvideClassificationService(i do.Injector) (*service.ClassificationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc, err := service.NewClassificationService(cfg.Library.VocabularyPath, service.ClassificationConfig{
		MatchThreshold:    cfg.Matching.MatchThreshold,
		GenreThreshold:    cfg.Matching.GenreThreshold,
		SubgenreThreshold: cfg.Matching.SubgenreThreshold,
		TropeThreshold:    cfg.Matching.TropeThreshold,
		MaxTropeResults:   cfg.Matching.MaxTropeResults,
		MaxSuggestions:    cfg.Matching.MaxSuggestions,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	available := svc.Available()
	log.Info("Classification vocabulary loaded",
		"path", cfg.Library.VocabularyPath,
		"genres", len(available.Genres),
		"subgenres", len(available.Subgenres),
		"tropes", len(available.Tropes),
	)

	return svc, nil
}

// ProvideBookService provides the book CRUD service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	classification := do.MustInvoke[*service.ClassificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.Index, classification, log.Logger), nil
}

// ProvideQueueService provides the TBR queue service with default weights.
func ProvideQueueService(i do.Injector) (*service.QueueService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQueueService(storeHandle.Store, nil, log.Logger), nil
}

// ProvideAvailabilityService provides the availability checking service.
func ProvideAvailabilityService(i do.Injector) (*service.AvailabilityService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := availability.NewClient(log.Logger, availability.ClientOptions{
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
		Timeout:           cfg.Scraper.Timeout,
	})
	checker := availability.NewChecker(availability.DefaultSources(client), cacheHandle.Cache, log.Logger)

	return service.NewAvailabilityService(storeHandle.Store, checker, log.Logger), nil
}

// ProvideReportService provides the reading report service.
func ProvideReportService(i do.Injector) (*service.ReportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReportService(storeHandle.Store, nil, log.Logger), nil
}

// ProvideRecommendationService provides the similar-book recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

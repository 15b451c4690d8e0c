// Package di provides dependency injection configuration for the ShelfHelp server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/config"
	"github.com/alexhouse-ua/shelfhelp-server/internal/di/providers"
	"github.com/alexhouse-ua/shelfhelp-server/internal/logger"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideAvailabilityCache)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideClassificationService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideQueueService)
	do.Provide(injector, providers.ProvideAvailabilityService)
	do.Provide(injector, providers.ProvideReportService)
	do.Provide(injector, providers.ProvideRecommendationService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.ClassificationService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.QueueService](injector)
	_ = do.MustInvoke[*service.AvailabilityService](injector)
	_ = do.MustInvoke[*service.ReportService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)

	// Workers
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it is empty but the library is not
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

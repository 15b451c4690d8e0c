package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/cache"
	"github.com/alexhouse-ua/shelfhelp-server/internal/config"
	"github.com/alexhouse-ua/shelfhelp-server/internal/logger"
	"github.com/alexhouse-ua/shelfhelp-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the library store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.Open(store.Config{
		Path:         cfg.Library.BooksPath,
		HistoryDir:   cfg.Library.HistoryPath,
		HistoryLimit: cfg.Library.HistoryLimit,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Library loaded", "path", cfg.Library.BooksPath, "books", st.Count())

	return &StoreHandle{Store: st}, nil
}

// CacheHandle wraps the availability cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideAvailabilityCache provides the disk-backed availability result cache.
func ProvideAvailabilityCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cachePath := filepath.Join(cfg.App.DataPath, "cache")
	c, err := cache.Open(cachePath, cfg.Scraper.CacheTTL, log.Logger)
	if err != nil {
		return nil, err
	}

	return &CacheHandle{Cache: c}, nil
}

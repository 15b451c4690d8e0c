package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/alexhouse-ua/shelfhelp-server/internal/logger"
	"github.com/alexhouse-ua/shelfhelp-server/internal/service"
	"github.com/alexhouse-ua/shelfhelp-server/internal/watcher"
)

// FileWatcherHandle wraps the library file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Close()
}

// ProvideFileWatcher provides the watcher that reloads the library when the
// books file is edited outside the server, then reindexes so search stays
// consistent with the file.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	w, err := watcher.New(watcher.Options{
		Path:   storeHandle.Path(),
		Logger: log.Logger,
		OnChange: func() {
			if err := storeHandle.Reload(); err != nil {
				log.Warn("library reload failed", "error", err)
				return
			}
			log.Info("library reloaded after external edit", "books", storeHandle.Count())
			if err := bookService.ReindexAll(context.Background()); err != nil {
				log.Warn("reindex after reload failed", "error", err)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("File watcher error", "error", err)
		}
	}()

	log.Info("File watcher started", "path", storeHandle.Path())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

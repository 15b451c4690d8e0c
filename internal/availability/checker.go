package availability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexhouse-ua/shelfhelp-server/internal/cache"
	"github.com/alexhouse-ua/shelfhelp-server/internal/domain"
)

// Checker runs every configured source for a book, consulting the cache
// first. One failing source never hides the results of the others; failures
// surface as unavailable snapshots with the error recorded in Detail.
type Checker struct {
	probers []Prober
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewChecker builds a checker. The cache may be nil, which disables caching.
func NewChecker(probers []Prober, c *cache.Cache, logger *slog.Logger) *Checker {
	return &Checker{probers: probers, cache: c, logger: logger}
}

// Sources returns the names of the configured sources.
func (c *Checker) Sources() []string {
	names := make([]string, 0, len(c.probers))
	for _, p := range c.probers {
		names = append(names, p.Name())
	}
	return names
}

// CheckBook probes every source for the book. With force set, cached results
// are ignored and refreshed.
func (c *Checker) CheckBook(ctx context.Context, book *domain.Book, force bool) []domain.SourceAvailability {
	results := make([]domain.SourceAvailability, 0, len(c.probers))
	for _, prober := range c.probers {
		results = append(results, c.checkSource(ctx, prober, book, force))
	}
	return results
}

func (c *Checker) checkSource(ctx context.Context, prober Prober, book *domain.Book, force bool) domain.SourceAvailability {
	key := cacheKey(book.ID, prober.Name())

	if c.cache != nil && !force {
		var cached domain.SourceAvailability
		hit, err := c.cache.Get(key, &cached)
		if err != nil && c.logger != nil {
			c.logger.Warn("availability cache read failed", "key", key, "error", err)
		}
		if hit {
			return cached
		}
	}

	result, err := prober.Probe(ctx, book)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("availability probe failed",
				"source", prober.Name(),
				"book_id", book.ID,
				"error", err,
			)
		}
		// Failed probes are reported, not cached, so the next check retries.
		return domain.SourceAvailability{
			Source: prober.Name(),
			Detail: fmt.Sprintf("check failed: %v", err),
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(key, result); err != nil && c.logger != nil {
			c.logger.Warn("availability cache write failed", "key", key, "error", err)
		}
	}
	return result
}

func cacheKey(bookID, source string) string {
	return "avail:" + bookID + ":" + source
}

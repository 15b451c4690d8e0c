// Package cache provides a disk-backed TTL cache. Availability checks use it
// so repeated lookups within the TTL window never hit the remote host.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache wraps a Badger database with JSON values and a fixed TTL.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// Open creates or opens the cache database at path. Entries expire after ttl.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if logger != nil {
		logger.Info("cache opened", "path", path, "ttl", ttl)
	}
	return &Cache{db: db, logger: logger, ttl: ttl}, nil
}

// Close gracefully closes the cache database.
func (c *Cache) Close() error {
	if c.logger != nil {
		c.logger.Info("closing cache")
	}
	return c.db.Close()
}

// Get loads the cached value for key into dest. It reports whether a live
// entry was found; expired and absent entries both miss.
func (c *Cache) Get(key string, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	return true, nil
}

// Set stores value under key with the cache's TTL.
func (c *Cache) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes key from the cache. Deleting an absent key is not an error.
func (c *Cache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Package cache holds the latest scraped snapshot in memory with a TTL.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
)

// Cache keeps at most one snapshot. Get reports whether the snapshot
// is still fresh; a stale snapshot is still returned so callers can
// serve it while a refresh is in flight.
type Cache struct {
	mu       sync.RWMutex
	snapshot *model.Snapshot
	storedAt time.Time
	duration time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a cache with the given TTL.
func New(duration time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		duration: duration,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the cached snapshot and whether it is within the TTL.
// A nil snapshot means nothing has been stored yet.
func (c *Cache) Get() (*model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil {
		return nil, false
	}

	fresh := c.now().Sub(c.storedAt) < c.duration
	return c.snapshot, fresh
}

// Set stores a snapshot and resets the TTL clock.
func (c *Cache) Set(snapshot *model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snapshot
	c.storedAt = c.now()
	c.logger.Debug("Snapshot cached",
		zap.Int("cinemas", len(snapshot.Cinemas)),
		zap.Int("films", snapshot.TotalFilms()))
}

// Seed stores a snapshot recovered from persistence as already stale,
// so the next read still triggers a refresh but has something to show
// in the meantime.
func (c *Cache) Seed(snapshot *model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil {
		return
	}

	c.snapshot = snapshot
	c.storedAt = c.now().Add(-c.duration)
	c.logger.Info("Snapshot restored from storage",
		zap.Int("cinemas", len(snapshot.Cinemas)),
		zap.Int("films", snapshot.TotalFilms()))
}

// Package service coordinates scraping, caching and persistence.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/alexandermaffei/matera-film-scraper/internal/cache"
	"github.com/alexandermaffei/matera-film-scraper/internal/digest"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
)

// Scraper produces a fresh snapshot for a set of cinemas.
type Scraper interface {
	ScrapeAll(ctx context.Context, sources []model.CinemaSource) *model.Snapshot
}

// SnapshotStore persists snapshots across restarts. Optional; a nil
// store disables persistence.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *model.Snapshot) error
	Latest(ctx context.Context) (*model.Snapshot, error)
}

// Service serves snapshots out of the cache and refreshes them from
// the scraper when they expire.
type Service struct {
	scraper    Scraper
	sources    []model.CinemaSource
	shortNames map[string]string
	cache      *cache.Cache
	store      SnapshotStore
	logger     *zap.Logger
}

// New creates a service. The store may be nil.
func New(scraper Scraper, sources []model.CinemaSource, c *cache.Cache, store SnapshotStore, logger *zap.Logger) *Service {
	return &Service{
		scraper:    scraper,
		sources:    sources,
		shortNames: model.ShortNames(sources),
		cache:      c,
		store:      store,
		logger:     logger,
	}
}

// Snapshot returns the current snapshot, scraping if the cache is
// empty or expired. A stale cached snapshot is never served.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if snapshot, fresh := s.cache.Get(); fresh {
		return snapshot, nil
	}
	return s.Refresh(ctx)
}

// Refresh scrapes all cinemas, updates the cache and persists the
// result. Persistence failures are logged, not fatal: the scrape
// result is still served.
func (s *Service) Refresh(ctx context.Context) (*model.Snapshot, error) {
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no cinemas configured")
	}

	s.logger.Info("Refreshing snapshot",
		zap.Int("cinemas", len(s.sources)))

	snapshot := s.scraper.ScrapeAll(ctx, s.sources)
	s.cache.Set(snapshot)

	if s.store != nil {
		if err := s.store.Save(ctx, snapshot); err != nil {
			s.logger.Warn("Failed to persist snapshot", zap.Error(err))
		}
	}

	return snapshot, nil
}

// Digest returns the Telegram digest for the current snapshot.
func (s *Service) Digest(ctx context.Context) (string, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return digest.Format(snapshot, s.shortNames), nil
}

// WarmStart seeds the cache from the last persisted snapshot so
// requests right after a restart have something to serve while the
// first scrape runs.
func (s *Service) WarmStart(ctx context.Context) {
	if s.store == nil {
		return
	}

	snapshot, err := s.store.Latest(ctx)
	if err != nil {
		s.logger.Warn("Failed to load last snapshot", zap.Error(err))
		return
	}
	if snapshot == nil {
		s.logger.Info("No persisted snapshot to restore")
		return
	}

	s.cache.Seed(snapshot)
}

// Sources returns the configured cinemas.
func (s *Service) Sources() []model.CinemaSource {
	return s.sources
}

// ShortNames returns the display name mapping for the configured
// cinemas.
func (s *Service) ShortNames() map[string]string {
	return s.shortNames
}

var nameFolder = cases.Fold()

// foldName lowercases a cinema name for matching and treats URL-style
// separators as spaces, so "cinema-guerrieri" matches "Cinema
// Comunale Guerrieri".
func foldName(name string) string {
	folded := nameFolder.String(name)
	folded = strings.ReplaceAll(folded, "-", " ")
	folded = strings.ReplaceAll(folded, "_", " ")
	return strings.TrimSpace(folded)
}

// CinemaByName finds a cinema in a snapshot by a caseless partial
// name match.
func CinemaByName(snapshot *model.Snapshot, name string) *model.Cinema {
	wanted := foldName(name)
	if wanted == "" {
		return nil
	}

	for i := range snapshot.Cinemas {
		have := foldName(snapshot.Cinemas[i].Name)
		if strings.Contains(have, wanted) || strings.Contains(wanted, have) {
			return &snapshot.Cinemas[i]
		}
	}
	return nil
}

package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexandermaffei/matera-film-scraper/internal/config"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"go.uber.org/zap"
)

// Scraper assembles per-venue records from listing and ticketing
// pages.
type Scraper struct {
	fetcher       PageFetcher
	retry         config.RetryConfig
	maxConcurrent int
	logger        *zap.Logger
	now           func() time.Time
}

// New creates a Scraper using the given page fetcher.
func New(fetcher PageFetcher, cfg *config.Config, logger *zap.Logger) *Scraper {
	return &Scraper{
		fetcher:       fetcher,
		retry:         cfg.RetryConfig,
		maxConcurrent: cfg.MaxConcurrentRequests,
		logger:        logger,
		now:           time.Now,
	}
}

// ScrapeCinema fetches one venue's list page and extracts its films.
// A fetch failure yields a venue with an empty film slice: one broken
// venue must not abort the snapshot.
func (s *Scraper) ScrapeCinema(ctx context.Context, source model.CinemaSource) model.Cinema {
	cinema := model.Cinema{
		Name:  source.Name,
		URL:   source.URL,
		Films: []model.Film{},
	}

	var doc *goquery.Document
	err := WithRetry(ctx, s.logger, s.retry, func() error {
		var fetchErr error
		doc, fetchErr = s.fetcher.GetHTML(ctx, source.URL)
		return fetchErr
	})
	if err != nil {
		s.logger.Warn("Failed to fetch cinema page",
			zap.String("cinema", source.Name),
			zap.String("url", source.URL),
			zap.Error(err))
		return cinema
	}

	cinema.Films = s.extractFilms(ctx, doc, source.URL)
	s.logger.Info("Scraped cinema",
		zap.String("cinema", source.Name),
		zap.Int("films", len(cinema.Films)))

	return cinema
}

// ScrapeAll runs one scrape pass over all venues with a bounded number
// of concurrent fetches. Results keep the source order regardless of
// completion order.
func (s *Scraper) ScrapeAll(ctx context.Context, sources []model.CinemaSource) *model.Snapshot {
	cinemas := make([]model.Cinema, len(sources))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(i int, source model.CinemaSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			cinemas[i] = s.ScrapeCinema(ctx, source)
		}(i, source)
	}

	wg.Wait()

	snapshot := &model.Snapshot{
		Timestamp: s.now().Format(time.RFC3339),
		Cinemas:   cinemas,
	}

	s.logger.Info("Scrape pass complete",
		zap.Int("cinemas", len(snapshot.Cinemas)),
		zap.Int("films", snapshot.TotalFilms()))

	return snapshot
}

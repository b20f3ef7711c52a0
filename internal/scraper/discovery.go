package scraper

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexandermaffei/matera-film-scraper/internal/config"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// newCollector builds a Colly collector with the usual politeness
// settings and manual retry bookkeeping.
func newCollector(cfg *config.Config, logger *zap.Logger) *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(browserUserAgent),
		colly.MaxDepth(1),
	)

	collector.WithTransport(&http.Transport{
		ResponseHeaderTimeout: 60 * time.Second,
		DisableKeepAlives:     true,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       cfg.RequestDelay,
		RandomDelay: cfg.RequestDelay / 2,
	}); err != nil {
		logger.Error("Failed to set collector limit", zap.Error(err))
	}

	collector.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries < cfg.RetryConfig.MaxRetries {
			retries++
			r.Request.Ctx.Put("retries", retries)
			logger.Warn("Retrying request",
				zap.String("url", r.Request.URL.String()),
				zap.Int("retry", retries),
				zap.Error(err))
			if err := r.Request.Retry(); err != nil {
				logger.Error("Failed to retry request",
					zap.String("url", r.Request.URL.String()),
					zap.Error(err))
			}
			return
		}

		logger.Error("Request failed after max retries",
			zap.String("url", r.Request.URL.String()),
			zap.Int("retries", retries),
			zap.Error(err))
	})

	extensions.RandomUserAgent(collector)

	return collector
}

// DiscoverCinemas crawls the city listing page and returns the cinema
// pages linked from it, replacing the fixed venue table when discovery
// is enabled. Names are rebuilt from the URL slug.
func DiscoverCinemas(ctx context.Context, cityURL string, cfg *config.Config, logger *zap.Logger) ([]model.CinemaSource, error) {
	seen := make(map[string]struct{})
	var sources []model.CinemaSource
	var mu sync.Mutex

	titleCaser := cases.Title(language.Italian)

	collector := newCollector(cfg, logger)
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		link := e.Request.AbsoluteURL(e.Attr("href"))
		slug := cinemaSlug(link)
		if slug == "" {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if _, exists := seen[link]; exists {
			return
		}
		seen[link] = struct{}{}
		sources = append(sources, model.CinemaSource{
			Name: titleCaser.String(strings.ReplaceAll(slug, "-", " ")),
			URL:  link,
		})
	})

	if err := collector.Visit(cityURL); err != nil {
		return nil, err
	}
	collector.Wait()

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})

	logger.Info("Discovered cinemas",
		zap.String("city_url", cityURL),
		zap.Int("count", len(sources)))

	return sources, nil
}

// cinemaSlug extracts the venue slug from a cinema page URL like
// https://www.comingsoon.it/cinema/matera/<slug>/<id>/. Anything else
// returns an empty string.
func cinemaSlug(link string) string {
	const prefix = "/cinema/matera/"

	idx := strings.Index(link, prefix)
	if idx < 0 {
		return ""
	}

	rest := strings.Trim(link[idx+len(prefix):], "/")
	parts := strings.Split(rest, "/")
	// Expect slug plus numeric id; the bare city page has neither.
	if len(parts) != 2 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

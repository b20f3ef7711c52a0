// Package scraper extracts cinema programming from comingsoon.it
// listing and ticketing pages.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexandermaffei/matera-film-scraper/internal/config"
	"go.uber.org/zap"
)

// browserUserAgent is sent with every page fetch; the site serves a
// reduced page to unknown clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageFetcher retrieves a remote page as a parsed document.
type PageFetcher interface {
	GetHTML(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPClient implements PageFetcher over net/http.
type HTTPClient struct {
	client *http.Client
	logger *zap.Logger
}

var _ PageFetcher = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTP page fetcher with the configured
// transport limits and request timeout.
func NewHTTPClient(cfg config.HTTPClientConfig, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		DisableKeepAlives:     cfg.DisableKeepAlives,
	}

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logger,
	}
}

// GetHTML fetches a page and parses it into a goquery document. A
// non-200 status is an error like any transport failure, so callers
// can degrade uniformly.
func (c *HTTPClient) GetHTML(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	return doc, nil
}

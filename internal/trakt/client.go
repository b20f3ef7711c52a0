// Package trakt looks up film metadata (TMDB/IMDB/Trakt IDs) through
// the Trakt API.
package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.trakt.tv"
	apiVersion     = "2"
	requestTimeout = 15 * time.Second
)

// ErrMissingClientID reports that no Trakt credential is configured.
// This is a configuration failure and is surfaced immediately, never
// silently skipped.
var ErrMissingClientID = errors.New("trakt: TRAKT_CLIENT_ID is not set")

// APIError is a non-2xx response from the Trakt API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trakt: API error %d: %s", e.StatusCode, e.Body)
}

// IDs carries the external identifiers of a film.
type IDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	TMDB  int    `json:"tmdb"`
	IMDB  string `json:"imdb"`
}

// SearchResult is one match from a film search.
type SearchResult struct {
	Title string  `json:"title"`
	Year  int     `json:"year"`
	Score float64 `json:"score"`
	IDs   IDs     `json:"ids"`
}

// Client calls the Trakt API with a caller-supplied client ID.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Trakt client. An empty client ID is allowed
// here; Search reports it as ErrMissingClientID on first use so the
// caller decides whether enrichment is required.
func NewClient(clientID string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  defaultBaseURL,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// searchItem is the wire shape of one search response entry.
type searchItem struct {
	Score float64 `json:"score"`
	Movie struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
		IDs   IDs    `json:"ids"`
	} `json:"movie"`
}

// Search runs a film search. A zero year means no year filter.
func (c *Client) Search(ctx context.Context, query string, year, limit int) ([]SearchResult, error) {
	if c.clientID == "" {
		return nil, ErrMissingClientID
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "movie")
	params.Set("limit", strconv.Itoa(limit))
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	endpoint := c.baseURL + "/search/movie?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Trakt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var items []searchItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode Trakt response: %w", err)
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, SearchResult{
			Title: item.Movie.Title,
			Year:  item.Movie.Year,
			Score: item.Score,
			IDs:   item.Movie.IDs,
		})
	}

	c.logger.Debug("Trakt search complete",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}

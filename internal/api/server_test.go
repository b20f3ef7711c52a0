package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/cache"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/alexandermaffei/matera-film-scraper/internal/service"
	"github.com/alexandermaffei/matera-film-scraper/internal/trakt"
)

type stubScraper struct {
	snapshot *model.Snapshot
}

func (s *stubScraper) ScrapeAll(_ context.Context, _ []model.CinemaSource) *model.Snapshot {
	return s.snapshot
}

type stubEnricher struct {
	films map[string]*trakt.EnrichedFilm
	err   error
}

func (s *stubEnricher) Enrich(_ context.Context, _ []model.Cinema) (map[string]*trakt.EnrichedFilm, error) {
	return s.films, s.err
}

func apiSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Timestamp: "2025-06-01T10:00:00Z",
		Cinemas: []model.Cinema{
			{
				Name: "Cinema Comunale Guerrieri",
				URL:  "https://www.comingsoon.it/cinema/matera/cinema-comunale-guerrieri/2635/",
				Films: []model.Film{{
					Title: "Dune",
					Times: []string{"21.00"},
					Schedule: []model.ShowtimeSlot{
						{Date: "2025-06-01", Weekday: "Domenica", Times: []string{"21.00"}},
					},
				}},
			},
			{Name: "Il Piccolo", Films: []model.Film{}},
		},
	}
}

func newTestServer(enricher Enricher) *Server {
	svc := service.New(
		&stubScraper{snapshot: apiSnapshot()},
		model.DefaultCinemas,
		cache.New(time.Hour, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	return NewServer("8080", svc, enricher, zap.NewNop())
}

func doRequest(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndex(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "matera-film-scraper", body["service"])

	cinemas, ok := body["cinema"].([]any)
	require.True(t, ok)
	assert.Len(t, cinemas, len(model.DefaultCinemas))
}

func TestIndex_UnknownPath(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestFilms(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/api/films")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2025-06-01T10:00:00Z", body["timestamp"])

	stats, ok := body["statistics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), stats["total_cinema"])
	assert.Equal(t, float64(1), stats["total_films"])

	cinemas, ok := body["cinema"].([]any)
	require.True(t, ok)
	require.Len(t, cinemas, 2)

	first, ok := cinemas[0].(map[string]any)
	require.True(t, ok)
	films, ok := first["film"].([]any)
	require.True(t, ok)
	film, ok := films[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Dune", film["titolo"])
	assert.Nil(t, film["sala"])
}

func TestTelegram(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/api/films/telegram")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "🎬 FILM IN PROGRAMMAZIONE - MATERA"))
}

func TestEnriched(t *testing.T) {
	enricher := &stubEnricher{films: map[string]*trakt.EnrichedFilm{
		"Dune": {Title: "Dune", Cinemas: []string{"Cinema Comunale Guerrieri"}, TMDB: 438631},
	}}
	rec := doRequest(t, newTestServer(enricher), "/api/films/enriched")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	films, ok := body["film"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, films, "Dune")
}

func TestEnriched_NoCredential(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/api/films/enriched")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	enricher := &stubEnricher{err: trakt.ErrMissingClientID}
	rec = doRequest(t, newTestServer(enricher), "/api/films/enriched")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEnriched_UpstreamFailure(t *testing.T) {
	enricher := &stubEnricher{err: &trakt.APIError{StatusCode: 500, Body: "boom"}}
	rec := doRequest(t, newTestServer(enricher), "/api/films/enriched")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCinemaByPath(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/api/films/guerrieri")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	cinema, ok := body["cinema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Cinema Comunale Guerrieri", cinema["cinema"])
}

func TestCinemaByPath_NotFound(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), "/api/films/odeon")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	available, ok := body["available"].([]any)
	require.True(t, ok)
	assert.Len(t, available, 2)
}

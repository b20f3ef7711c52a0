package trakt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchResponse = `[
  {
    "type": "movie",
    "score": 297.85,
    "movie": {
      "title": "Inside Out 3",
      "year": 2027,
      "ids": {"trakt": 12345, "slug": "inside-out-3", "tmdb": 9999, "imdb": "tt7654321"}
    }
  }
]`

func newTestClient(serverURL string) *Client {
	c := NewClient("test-client-id", zap.NewNop())
	c.baseURL = serverURL
	return c
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "Inside Out 3", r.URL.Query().Get("query"))
		assert.Equal(t, "movie", r.URL.Query().Get("type"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("year"))
		assert.Equal(t, "2", r.Header.Get("trakt-api-version"))
		assert.Equal(t, "test-client-id", r.Header.Get("trakt-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "Inside Out 3", 0, 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Inside Out 3", results[0].Title)
	assert.Equal(t, 2027, results[0].Year)
	assert.Equal(t, 12345, results[0].IDs.Trakt)
	assert.Equal(t, "inside-out-3", results[0].IDs.Slug)
	assert.Equal(t, 9999, results[0].IDs.TMDB)
	assert.Equal(t, "tt7654321", results[0].IDs.IMDB)
}

func TestClient_Search_YearFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2027", r.URL.Query().Get("year"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "Inside Out 3", 2027, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_Search_MissingClientID(t *testing.T) {
	client := NewClient("", zap.NewNop())

	_, err := client.Search(context.Background(), "Inside Out 3", 0, 1)
	assert.ErrorIs(t, err, ErrMissingClientID)
}

func TestClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), "Inside Out 3", 0, 1)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

package scraper

import (
	"context"
	"testing"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeCinema(t *testing.T) {
	source := model.CinemaSource{
		Name: "Il Piccolo",
		URL:  "https://www.comingsoon.it/cinema/matera/il-piccolo/4976/",
	}
	fetcher := &stubFetcher{pages: map[string]string{
		source.URL: listPage,
		"https://www.comingsoon.it/cinema/ticket/12345/": detailForTicket,
	}}

	s := newTestScraper(fetcher)
	cinema := s.ScrapeCinema(context.Background(), source)

	assert.Equal(t, "Il Piccolo", cinema.Name)
	assert.Equal(t, source.URL, cinema.URL)
	require.Len(t, cinema.Films, 2)
	assert.Equal(t, "Inside Out 3", cinema.Films[0].Title)
}

func TestScrapeCinema_FetchFailure(t *testing.T) {
	source := model.CinemaSource{
		Name: "Cinema Offline",
		URL:  "https://www.comingsoon.it/cinema/matera/offline/1/",
	}

	s := newTestScraper(&stubFetcher{})
	cinema := s.ScrapeCinema(context.Background(), source)

	// The venue record survives with an empty film slice.
	assert.Equal(t, "Cinema Offline", cinema.Name)
	assert.NotNil(t, cinema.Films)
	assert.Empty(t, cinema.Films)
}

func TestScrapeAll_PreservesSourceOrderAndIsolatesFailures(t *testing.T) {
	working := model.CinemaSource{
		Name: "Il Piccolo",
		URL:  "https://www.comingsoon.it/cinema/matera/il-piccolo/4976/",
	}
	broken := model.CinemaSource{
		Name: "Cinema Offline",
		URL:  "https://www.comingsoon.it/cinema/matera/offline/1/",
	}

	fetcher := &stubFetcher{pages: map[string]string{
		working.URL: listPage,
		"https://www.comingsoon.it/cinema/ticket/12345/": detailForTicket,
	}}

	s := newTestScraper(fetcher)
	snapshot := s.ScrapeAll(context.Background(), []model.CinemaSource{broken, working})

	require.Len(t, snapshot.Cinemas, 2)
	assert.Equal(t, "Cinema Offline", snapshot.Cinemas[0].Name)
	assert.Empty(t, snapshot.Cinemas[0].Films)
	assert.Equal(t, "Il Piccolo", snapshot.Cinemas[1].Name)
	assert.Len(t, snapshot.Cinemas[1].Films, 2)

	assert.Equal(t, "2025-06-01T10:00:00Z", snapshot.Timestamp)
	assert.Equal(t, 2, snapshot.TotalFilms())
}

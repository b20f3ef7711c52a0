package trakt

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"go.uber.org/zap"
)

// EnrichedFilm aggregates one title across all cinemas, with the
// metadata found on Trakt. A failed lookup leaves the ID fields empty
// and notes the failure in LookupError; the rest of the aggregation is
// unaffected.
type EnrichedFilm struct {
	Title       string               `json:"title"`
	Cinemas     []string             `json:"cinema"`
	Schedule    []model.ShowtimeSlot `json:"programmazione"`
	TMDB        int                  `json:"tmdb,omitempty"`
	IMDB        string               `json:"imdb,omitempty"`
	IMDBURL     string               `json:"imdb_url,omitempty"`
	Trakt       string               `json:"trakt,omitempty"`
	LookupError string               `json:"trakt_error,omitempty"`
}

// Enrich looks up every distinct title of a snapshot on Trakt and
// returns the aggregation keyed by title. A missing client ID aborts
// immediately with ErrMissingClientID; any per-title API failure is
// recorded on that title only.
func (c *Client) Enrich(ctx context.Context, cinemas []model.Cinema) (map[string]*EnrichedFilm, error) {
	films := make(map[string]*EnrichedFilm)
	cinemaSets := make(map[string]map[string]struct{})

	for _, cinema := range cinemas {
		for _, film := range cinema.Films {
			if film.Title == "" {
				continue
			}

			entry, ok := films[film.Title]
			if !ok {
				entry = &EnrichedFilm{Title: film.Title, Schedule: []model.ShowtimeSlot{}}
				films[film.Title] = entry
				cinemaSets[film.Title] = make(map[string]struct{})
			}

			cinemaSets[film.Title][cinema.Name] = struct{}{}
			entry.Schedule = append(entry.Schedule, film.Schedule...)
		}
	}

	titles := make([]string, 0, len(films))
	for title := range films {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		entry := films[title]

		for name := range cinemaSets[title] {
			entry.Cinemas = append(entry.Cinemas, name)
		}
		sort.Strings(entry.Cinemas)

		results, err := c.Search(ctx, title, 0, 1)
		if err != nil {
			if errors.Is(err, ErrMissingClientID) {
				return nil, err
			}
			c.logger.Warn("Trakt lookup failed",
				zap.String("title", title),
				zap.Error(err))
			entry.LookupError = err.Error()
			continue
		}

		if len(results) == 0 {
			entry.LookupError = "not found"
			continue
		}

		match := results[0]
		entry.TMDB = match.IDs.TMDB
		entry.IMDB = match.IDs.IMDB
		if match.IDs.Trakt != 0 {
			entry.Trakt = strconv.Itoa(match.IDs.Trakt)
		} else {
			entry.Trakt = match.IDs.Slug
		}
		if entry.IMDB != "" {
			entry.IMDBURL = "https://www.imdb.com/title/" + entry.IMDB + "/"
		}
	}

	return films, nil
}

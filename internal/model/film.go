// Package model contains the data model shared across the scraping
// pipeline. Field names mirror the JSON produced for existing
// consumers, so the Italian keys are part of the contract.
package model

// ShowtimeSlot is one calendar date with the distinct start times a
// film plays on that date.
type ShowtimeSlot struct {
	Date    string   `json:"data"`
	Weekday string   `json:"giorno"`
	Times   []string `json:"orari"`
}

// Film is one title as listed on a cinema page. Times holds the
// showtimes visible on the list page itself; Schedule holds the full
// multi-day calendar from the ticketing page when one was linked.
type Film struct {
	Title    string         `json:"titolo"`
	Times    []string       `json:"orari"`
	Room     *string        `json:"sala"`
	Schedule []ShowtimeSlot `json:"programmazione"`
}

// Cinema is one venue with the films it is currently showing. The
// film order is the order found on the source page.
type Cinema struct {
	Name  string `json:"cinema"`
	URL   string `json:"url"`
	Films []Film `json:"film"`
}

// Snapshot is the result of one full scrape pass over all venues.
type Snapshot struct {
	Timestamp string   `json:"timestamp"`
	Cinemas   []Cinema `json:"cinema"`
}

// TotalFilms counts films across all cinemas in the snapshot.
func (s *Snapshot) TotalFilms() int {
	total := 0
	for _, c := range s.Cinemas {
		total += len(c.Films)
	}
	return total
}

package model

// CinemaSource identifies one listing source to scrape.
type CinemaSource struct {
	Name  string
	Short string
	URL   string
}

// CityListingURL is the comingsoon.it page listing the Matera cinemas,
// used when cinema discovery is enabled.
const CityListingURL = "https://www.comingsoon.it/cinema/matera/"

// DefaultCinemas are the three Matera cinemas scraped when discovery
// is disabled.
var DefaultCinemas = []CinemaSource{
	{
		Name:  "Cinema Comunale Guerrieri",
		Short: "Guerrieri",
		URL:   "https://www.comingsoon.it/cinema/matera/cinema-comunale-guerrieri/2635/",
	},
	{
		Name:  "Il Piccolo",
		Short: "Piccolo",
		URL:   "https://www.comingsoon.it/cinema/matera/il-piccolo/4976/",
	},
	{
		Name:  "UCI Cinemas Red Carpet",
		Short: "Red Carpet",
		URL:   "https://www.comingsoon.it/cinema/matera/uci-cinemas-red-carpet/5635/",
	},
}

// ShortNames builds the display-name map used by the digest formatter.
// Sources without a short name fall back to their full name at render
// time, so they are simply omitted here.
func ShortNames(sources []CinemaSource) map[string]string {
	names := make(map[string]string, len(sources))
	for _, src := range sources {
		if src.Short != "" {
			names[src.Name] = src.Short
		}
	}
	return names
}

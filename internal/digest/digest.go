// Package digest renders a scrape snapshot into the text digest sent
// to Telegram consumers. The emoji markers and line layout are a
// contract with downstream bots and must not change.
package digest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
)

// Header is the first line of every digest.
const Header = "🎬 FILM IN PROGRAMMAZIONE - MATERA"

// monthNames maps zero-padded month numbers to Italian month names.
var monthNames = map[string]string{
	"01": "gennaio", "02": "febbraio", "03": "marzo", "04": "aprile",
	"05": "maggio", "06": "giugno", "07": "luglio", "08": "agosto",
	"09": "settembre", "10": "ottobre", "11": "novembre", "12": "dicembre",
}

// timeSet is the set of distinct normalized times on one date.
type timeSet map[string]struct{}

// dateRange is a maximal run of consecutive dates sharing an identical
// time set, used only for rendering.
type dateRange struct {
	start string
	end   string
	times []string
}

// Format renders the digest for a snapshot. shortNames maps full venue
// names to display names; venues not in the map render under their
// full name. The function performs no I/O and never fails: an empty
// snapshot produces just the header, an unparseable timestamp omits
// the trailing update line.
func Format(snapshot *model.Snapshot, shortNames map[string]string) string {
	lines := []string{Header + "\n"}

	films := project(snapshot, shortNames)

	titles := make([]string, 0, len(films))
	for title := range films {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		lines = append(lines, "📽️ "+title)

		venueMap := films[title]
		venues := make([]string, 0, len(venueMap))
		for venue := range venueMap {
			venues = append(venues, venue)
		}
		sort.Strings(venues)

		for _, venue := range venues {
			for _, group := range compressRanges(venueMap[venue]) {
				lines = append(lines,
					fmt.Sprintf("   📅 %s · %s", formatRange(group.start, group.end), venue),
					fmt.Sprintf("      🕐 %s", strings.Join(group.times, " • ")),
				)
			}
		}

		lines = append(lines, "")
	}

	if updated := formatUpdatedLine(snapshot.Timestamp); updated != "" {
		lines = append(lines, updated)
	}

	return strings.Join(lines, "\n")
}

// project builds the title → venue → date → times view of a snapshot.
// Times are normalized to the HH:MM form and deduplicated via set
// membership; insertion order is irrelevant because every level is
// sorted before rendering.
func project(snapshot *model.Snapshot, shortNames map[string]string) map[string]map[string]map[string]timeSet {
	films := make(map[string]map[string]map[string]timeSet)

	for _, cinema := range snapshot.Cinemas {
		venue := cinema.Name
		if short, ok := shortNames[cinema.Name]; ok {
			venue = short
		}

		for _, film := range cinema.Films {
			if film.Title == "" {
				continue
			}

			for _, slot := range film.Schedule {
				if slot.Date == "" {
					continue
				}
				for _, t := range slot.Times {
					if t == "" {
						continue
					}

					byVenue, ok := films[film.Title]
					if !ok {
						byVenue = make(map[string]map[string]timeSet)
						films[film.Title] = byVenue
					}
					byDate, ok := byVenue[venue]
					if !ok {
						byDate = make(map[string]timeSet)
						byVenue[venue] = byDate
					}
					times, ok := byDate[slot.Date]
					if !ok {
						times = make(timeSet)
						byDate[slot.Date] = times
					}

					times[strings.ReplaceAll(t, ".", ":")] = struct{}{}
				}
			}
		}
	}

	return films
}

// compressRanges walks the dates of one (title, venue) pair in order
// and merges consecutive days with identical time sets into ranges. A
// gap in the calendar or a different time set starts a new group, so
// the grouping is lossless and no two adjacent groups can merge.
func compressRanges(byDate map[string]timeSet) []dateRange {
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var groups []dateRange
	for _, date := range dates {
		times := sortedTimes(byDate[date])

		if len(groups) > 0 {
			current := &groups[len(groups)-1]
			if equalTimes(current.times, times) && consecutive(current.end, date) {
				current.end = date
				continue
			}
		}

		groups = append(groups, dateRange{start: date, end: date, times: times})
	}

	return groups
}

func sortedTimes(set timeSet) []string {
	times := make([]string, 0, len(set))
	for t := range set {
		times = append(times, t)
	}
	sort.Strings(times)
	return times
}

func equalTimes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// consecutive reports whether next is exactly one calendar day after
// prev. Unparseable dates never chain.
func consecutive(prev, next string) bool {
	prevDay, err := time.Parse("2006-01-02", prev)
	if err != nil {
		return false
	}
	nextDay, err := time.Parse("2006-01-02", next)
	if err != nil {
		return false
	}
	return nextDay.Sub(prevDay) == 24*time.Hour
}

// formatDate renders an ISO date as "D mese".
func formatDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}

	day := parts[2]
	if n, err := strconv.Atoi(day); err == nil {
		day = strconv.Itoa(n)
	}

	month, ok := monthNames[parts[1]]
	if !ok {
		month = parts[1]
	}

	return day + " " + month
}

// formatRange renders a date span: "D mese" for single days,
// "D1-D2 mese" within one month, "D1 mese1 → D2 mese2" across months.
func formatRange(start, end string) string {
	if start == end {
		return formatDate(start)
	}

	a := strings.SplitN(start, "-", 3)
	b := strings.SplitN(end, "-", 3)
	if len(a) == 3 && len(b) == 3 && a[0] == b[0] && a[1] == b[1] {
		dayA, errA := strconv.Atoi(a[2])
		dayB, errB := strconv.Atoi(b[2])
		if errA == nil && errB == nil {
			month, ok := monthNames[a[1]]
			if !ok {
				month = a[1]
			}
			return fmt.Sprintf("%d-%d %s", dayA, dayB, month)
		}
	}

	return formatDate(start) + " → " + formatDate(end)
}

// formatUpdatedLine renders the trailing "last updated" line. An empty
// or unparseable timestamp yields an empty string and the line is
// dropped, which is not an error.
func formatUpdatedLine(timestamp string) string {
	if timestamp == "" {
		return ""
	}

	parsed, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		parsed, err = time.Parse("2006-01-02T15:04:05", timestamp)
		if err != nil {
			return ""
		}
	}

	return "Aggiornato il " + parsed.Format("02/01/2006 alle 15:04")
}

package scraper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"go.uber.org/zap"
)

// monthAbbr maps the three-letter Italian month abbreviations used by
// the ticketing day markers to zero-padded month numbers.
var monthAbbr = map[string]string{
	"GEN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAG": "05", "GIU": "06", "LUG": "07", "AGO": "08",
	"SET": "09", "OTT": "10", "NOV": "11", "DIC": "12",
}

// composeDate rebuilds a full ISO date from the partial day marker of a
// ticketing page. The pages never carry a year: the reference date's
// year is assumed, advanced by one when the marker lies behind the
// reference (rolling listings wrap into the next year).
func composeDate(day, month string, now time.Time, logger *zap.Logger) (string, error) {
	dayNum, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return "", fmt.Errorf("invalid day number %q: %w", day, err)
	}

	monthNum, ok := monthAbbr[strings.ToUpper(strings.TrimSpace(month))]
	if !ok {
		logger.Warn("Unknown month abbreviation, defaulting to January",
			zap.String("month", month))
		monthNum = "01"
	}

	year := now.Year()
	m, _ := strconv.Atoi(monthNum)
	if m < int(now.Month()) || (m == int(now.Month()) && dayNum < now.Day()) {
		year++
	}

	return fmt.Sprintf("%d-%s-%02d", year, monthNum, dayNum), nil
}

// dayAccumulator collects per-day showtimes, merging repeated blocks
// that resolve to the same calendar date. Time sets are unioned, so a
// duplicated day fragment never loses showtimes; the first weekday
// label seen for a date wins.
type dayAccumulator struct {
	slots map[string]*model.ShowtimeSlot
}

func newDayAccumulator() *dayAccumulator {
	return &dayAccumulator{slots: make(map[string]*model.ShowtimeSlot)}
}

// Add records the times seen for a reconstructed date.
func (a *dayAccumulator) Add(date, weekday string, times []string) {
	slot, exists := a.slots[date]
	if !exists {
		slot = &model.ShowtimeSlot{Date: date, Weekday: weekday, Times: []string{}}
		a.slots[date] = slot
	}
	slot.Times = append(slot.Times, times...)
}

// Slots returns the accumulated schedule: duplicate times removed,
// times sorted, dates with an empty time set dropped, slots ordered by
// date. The zero-padded ISO form makes the string sort chronological.
func (a *dayAccumulator) Slots() []model.ShowtimeSlot {
	slots := make([]model.ShowtimeSlot, 0, len(a.slots))
	for _, slot := range a.slots {
		slot.Times = dedupeSorted(slot.Times)
		if len(slot.Times) == 0 {
			continue
		}
		slots = append(slots, *slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Date < slots[j].Date
	})

	return slots
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

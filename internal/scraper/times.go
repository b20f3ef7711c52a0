package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// timePattern matches clock-like tokens such as "17.30", "21:10" or
// "21,10". Prices on the same line ("7,00€") share this shape and are
// filtered below.
var timePattern = regexp.MustCompile(`\b\d{1,2}[.,:]\d{2}\b`)

var timeSeparators = strings.NewReplacer(":", ".", ",", ".")

// ExtractTimes pulls showtime tokens out of free-form schedule text,
// normalized to the HH.MM form used on the list pages. Tokens that do
// not parse as a time of day are dropped silently; an input without
// valid tokens yields an empty slice, never an error.
func ExtractTimes(text string) []string {
	matches := timePattern.FindAllString(text, -1)

	times := make([]string, 0, len(matches))
	for _, raw := range matches {
		normalized := timeSeparators.Replace(raw)

		value, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			continue
		}

		// Anything at 24 or above is a year, a seat count or a price,
		// not a time.
		if value < 0 || value >= 24 {
			continue
		}

		// Small comma-decimal numbers are euro amounts ("7,00€").
		if strings.Contains(raw, ",") && value < 10 {
			continue
		}

		times = append(times, normalized)
	}

	return times
}

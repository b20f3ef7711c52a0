package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"go.uber.org/zap"
)

// detailTimePattern matches the showtime buttons on ticketing pages,
// which carry a bare H:MM or HH:MM label.
var detailTimePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// ExtractDetailSchedule walks the day blocks of a ticketing page and
// rebuilds the film's full calendar. Each day block carries a
// weekday/day/month marker and a row of showtime buttons; blocks with
// an incomplete marker or no valid times are skipped.
func ExtractDetailSchedule(doc *goquery.Document, now time.Time, logger *zap.Logger) []model.ShowtimeSlot {
	acc := newDayAccumulator()

	doc.Find("div.media.mbm").Each(func(i int, block *goquery.Selection) {
		left := block.Find("div.media-left").First()
		if left.Length() == 0 {
			return
		}

		weekday := strings.TrimSpace(left.Find("span.weekday").First().Text())
		day := strings.TrimSpace(left.Find("span.day").First().Text())
		month := strings.TrimSpace(left.Find("span.month").First().Text())

		if weekday == "" || day == "" || month == "" {
			logger.Debug("Day block missing date marker, skipping",
				zap.Int("block", i))
			return
		}

		date, err := composeDate(day, month, now, logger)
		if err != nil {
			logger.Debug("Failed to compose date, skipping block",
				zap.Int("block", i), zap.Error(err))
			return
		}

		var times []string
		block.Find("div.media-body button.btn-fab").Each(func(_ int, btn *goquery.Selection) {
			text := strings.TrimSpace(btn.Text())
			if !detailTimePattern.MatchString(text) {
				return
			}
			if !validClockTime(text) {
				return
			}
			times = append(times, text)
		})

		acc.Add(date, weekday, times)
	})

	return acc.Slots()
}

// validClockTime checks hour and minute ranges of an H:MM token.
func validClockTime(token string) bool {
	parts := strings.SplitN(token, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return hour >= 0 && hour < 24 && minute >= 0 && minute < 60
}

package scraper

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"go.uber.org/zap"
)

var (
	salaPattern       = regexp.MustCompile(`Sala\s+(\d+)`)
	ticketTextPattern = regexp.MustCompile(`(?is)acquista.*biglietto`)
	headingPattern    = regexp.MustCompile(`(?i)film in programmazione`)
)

// listingStrategy locates the film-card blocks of a list page. The
// strategies are tried in order until one yields at least one block,
// so a third layout variant only needs a new entry here.
type listingStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

var listingStrategies = []listingStrategy{
	{
		name: "film-card",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("div.header-scheda.streaming")
		},
	},
	{
		// Some venue pages drop the card marker; the section under the
		// "Film in programmazione" heading still contains the blocks.
		name: "section-heading",
		find: func(doc *goquery.Document) *goquery.Selection {
			heading := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
				return headingPattern.MatchString(s.Text())
			}).First()
			if heading.Length() == 0 {
				return heading
			}
			return heading.Closest("section").Find("div.header-scheda")
		},
	},
}

// extractFilms produces the films visible on a venue's list page, in
// page order. A page matching no strategy yields an empty slice.
func (s *Scraper) extractFilms(ctx context.Context, doc *goquery.Document, pageURL string) []model.Film {
	var blocks *goquery.Selection
	for _, strategy := range listingStrategies {
		blocks = strategy.find(doc)
		if blocks.Length() > 0 {
			s.logger.Debug("Listing strategy matched",
				zap.String("strategy", strategy.name),
				zap.Int("blocks", blocks.Length()))
			break
		}
	}

	if blocks == nil || blocks.Length() == 0 {
		s.logger.Debug("No film blocks found", zap.String("url", pageURL))
		return []model.Film{}
	}

	origin := pageOrigin(pageURL)

	films := make([]model.Film, 0, blocks.Length())
	blocks.Each(func(_ int, block *goquery.Selection) {
		if film, ok := s.extractFilm(ctx, block, origin); ok {
			films = append(films, film)
		}
	})

	return films
}

// extractFilm reads one film card. A block without a title carries no
// signal and is dropped; a block without showtimes is still a valid
// upcoming title.
func (s *Scraper) extractFilm(ctx context.Context, block *goquery.Selection, origin string) (model.Film, bool) {
	title := strings.TrimSpace(block.Find("a.tit_olo").First().Text())
	if title == "" {
		return model.Film{}, false
	}

	times, room := extractListingSchedule(block)

	film := model.Film{
		Title:    title,
		Times:    times,
		Room:     room,
		Schedule: []model.ShowtimeSlot{},
	}

	if link := ticketLink(block, origin); link != "" {
		film.Schedule = s.fetchDetailSchedule(ctx, title, link)
	}

	return film, true
}

// extractListingSchedule pulls the list-page times and room label out
// of a film card. The schedule element is preferred; when it yields
// nothing, the whole block text is the fallback.
func extractListingSchedule(block *goquery.Selection) ([]string, *string) {
	var times []string
	var room *string

	schedule := block.Find("div.cs-btn.sala").First()
	if schedule.Length() > 0 {
		if match := salaPattern.FindStringSubmatch(schedule.Text()); match != nil {
			label := "Sala " + match[1]
			room = &label
		}

		// The times usually sit in their own span next to the room
		// label; fall back to the element's full text.
		scheduleText := ""
		schedule.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			if timePattern.MatchString(span.Text()) {
				scheduleText = span.Text()
				return false
			}
			return true
		})
		if scheduleText == "" {
			scheduleText = schedule.Text()
		}

		times = ExtractTimes(scheduleText)
	}

	if len(times) == 0 {
		blockText := block.Text()
		times = ExtractTimes(blockText)
		if room == nil {
			if match := salaPattern.FindStringSubmatch(blockText); match != nil {
				label := "Sala " + match[1]
				room = &label
			}
		}
	}

	return times, room
}

// ticketLink finds the "Acquista biglietto" link of a film card and
// resolves it against the page origin. An empty return means the card
// has no ticketing page.
func ticketLink(block *goquery.Selection, origin string) string {
	var href string

	block.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		if strings.Contains(strings.ToLower(h), "ticket") {
			href = h
			return false
		}
		return true
	})

	if href == "" {
		block.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if ticketTextPattern.MatchString(a.Text()) {
				href, _ = a.Attr("href")
				return false
			}
			return true
		})
	}

	if href == "" {
		return ""
	}

	if strings.HasPrefix(href, "http") {
		return href
	}
	return origin + href
}

// fetchDetailSchedule retrieves and parses a film's ticketing page. A
// fetch failure costs only this film's schedule, never the venue.
func (s *Scraper) fetchDetailSchedule(ctx context.Context, title, link string) []model.ShowtimeSlot {
	var doc *goquery.Document
	err := WithRetry(ctx, s.logger, s.retry, func() error {
		var fetchErr error
		doc, fetchErr = s.fetcher.GetHTML(ctx, link)
		return fetchErr
	})
	if err != nil {
		s.logger.Warn("Failed to fetch ticketing page",
			zap.String("title", title),
			zap.String("url", link),
			zap.Error(err))
		return []model.ShowtimeSlot{}
	}

	return ExtractDetailSchedule(doc, s.now(), s.logger)
}

// pageOrigin reduces a page URL to its scheme://host prefix for
// resolving root-relative hrefs.
func pageOrigin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "https://www.comingsoon.it"
	}
	return u.Scheme + "://" + u.Host
}

package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustParseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const detailPage = `
<html><body>
<div class="media mbm">
  <div class="media-left">
    <span class="weekday">MAR</span>
    <span class="day">10</span>
    <span class="month">GIU</span>
  </div>
  <div class="media-body">
    <button class="btn-fab c">18:00</button>
  </div>
</div>
<div class="media mbm">
  <div class="media-left">
    <span class="weekday">MAR</span>
    <span class="day">10</span>
    <span class="month">GIU</span>
  </div>
  <div class="media-body">
    <button class="btn-fab c">21:00</button>
    <button class="btn-fab c">Acquista</button>
  </div>
</div>
<div class="media mbm">
  <div class="media-left">
    <span class="weekday">MER</span>
    <span class="day">11</span>
  </div>
  <div class="media-body">
    <button class="btn-fab c">20:00</button>
  </div>
</div>
</body></html>`

func TestExtractDetailSchedule(t *testing.T) {
	doc := mustParseHTML(t, detailPage)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	slots := ExtractDetailSchedule(doc, now, zap.NewNop())

	// Two blocks for the same date merge into one slot; the block with
	// an incomplete day marker is skipped.
	assert.Equal(t, []model.ShowtimeSlot{
		{Date: "2025-06-10", Weekday: "MAR", Times: []string{"18:00", "21:00"}},
	}, slots)
}

func TestExtractDetailSchedule_RejectsInvalidButtons(t *testing.T) {
	html := `
<div class="media mbm">
  <div class="media-left">
    <span class="weekday">GIO</span>
    <span class="day">12</span>
    <span class="month">GIU</span>
  </div>
  <div class="media-body">
    <button class="btn-fab c">25:00</button>
    <button class="btn-fab c">19:75</button>
    <button class="btn-fab c">19:30</button>
  </div>
</div>`
	doc := mustParseHTML(t, html)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	slots := ExtractDetailSchedule(doc, now, zap.NewNop())
	assert.Equal(t, []string{"19:30"}, slots[0].Times)
}

func TestExtractDetailSchedule_BlockWithoutTimesDropped(t *testing.T) {
	html := `
<div class="media mbm">
  <div class="media-left">
    <span class="weekday">GIO</span>
    <span class="day">12</span>
    <span class="month">GIU</span>
  </div>
  <div class="media-body"></div>
</div>`
	doc := mustParseHTML(t, html)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	assert.Empty(t, ExtractDetailSchedule(doc, now, zap.NewNop()))
}

func TestExtractDetailSchedule_EmptyPage(t *testing.T) {
	doc := mustParseHTML(t, "<html><body><p>niente</p></body></html>")
	assert.Empty(t, ExtractDetailSchedule(doc, time.Now(), zap.NewNop()))
}

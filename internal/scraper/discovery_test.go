package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCinemaSlug(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.comingsoon.it/cinema/matera/il-piccolo/4976/", "il-piccolo"},
		{"https://www.comingsoon.it/cinema/matera/uci-cinemas-red-carpet/5635/", "uci-cinemas-red-carpet"},
		{"https://www.comingsoon.it/cinema/matera/", ""},
		{"https://www.comingsoon.it/cinema/roma/odeon/1/", ""},
		{"https://www.comingsoon.it/film/dune/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cinemaSlug(tt.link), tt.link)
	}
}

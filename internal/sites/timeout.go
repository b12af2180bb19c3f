package sites

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// TimeOut scrapes the things-to-do tiles on timeout.com/sydney.
// Tiles carry no machine-readable date, so events default to the capture
// time with a pointer to the website.
type TimeOut struct {
	name     string
	url      string
	selector string
	fetcher  string
}

// NewTimeOut creates the TimeOut adapter.
func NewTimeOut(cfg config.SiteConfig) *TimeOut {
	selector := cfg.Selector
	if selector == "" {
		selector = ".tile"
	}
	return &TimeOut{
		name:     cfg.Name,
		url:      cfg.URL,
		selector: selector,
		fetcher:  fetcherType(cfg),
	}
}

func (t *TimeOut) Name() string         { return t.name }
func (t *TimeOut) URL() string          { return t.url }
func (t *TimeOut) CardSelector() string { return t.selector }
func (t *TimeOut) FetcherType() string  { return t.fetcher }

// Extract parses event tiles from a rendered TimeOut page.
func (t *TimeOut) Extract(doc *goquery.Document, now time.Time) []types.Event {
	var events []types.Event

	doc.Find(t.selector).Each(func(i int, card *goquery.Selection) {
		title := cardText(card, "h3")
		link := resolveURL(t.url, cardAttr(card, "a", "href"))
		if title == "" || link == "" {
			return
		}

		events = append(events, types.Event{
			Title:       title,
			Date:        now,
			Time:        "See website for dates",
			Location:    DefaultLocation,
			Description: cardText(card, ".tile__content p"),
			URL:         link,
			Image:       cardAttr(card, "img", "src"),
			Source:      t.name,
			ScrapedAt:   now,
		})
	})

	return events
}

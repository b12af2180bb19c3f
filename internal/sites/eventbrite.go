package sites

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/dates"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// Eventbrite scrapes the Sydney listing on eventbrite.com.au.
type Eventbrite struct {
	name     string
	url      string
	selector string
	fetcher  string
}

// NewEventbrite creates the Eventbrite adapter.
func NewEventbrite(cfg config.SiteConfig) *Eventbrite {
	selector := cfg.Selector
	if selector == "" {
		selector = ".search-event-card-square"
	}
	return &Eventbrite{
		name:     cfg.Name,
		url:      cfg.URL,
		selector: selector,
		fetcher:  fetcherType(cfg),
	}
}

func (e *Eventbrite) Name() string         { return e.name }
func (e *Eventbrite) URL() string          { return e.url }
func (e *Eventbrite) CardSelector() string { return e.selector }
func (e *Eventbrite) FetcherType() string  { return e.fetcher }

// Extract parses event cards from a rendered Eventbrite listing.
func (e *Eventbrite) Extract(doc *goquery.Document, now time.Time) []types.Event {
	var events []types.Event

	doc.Find(e.selector).Each(func(i int, card *goquery.Selection) {
		title := cardText(card, ".event-card__title")
		link := resolveURL(e.url, cardAttr(card, "a.event-card-link", "href"))
		if title == "" || link == "" {
			return
		}

		dateStr := cardText(card, ".event-card__date")
		location := cardText(card, ".location-info__venue-name")
		if location == "" {
			location = DefaultLocation
		}

		events = append(events, types.Event{
			Title:     title,
			Date:      dates.Normalize(dateStr, now),
			Time:      dateStr,
			Location:  location,
			URL:       link,
			Image:     cardAttr(card, "img", "src"),
			Source:    e.name,
			ScrapedAt: now,
		})
	})

	return events
}

// Package sites holds one adapter per target site. An adapter knows the
// site's listing URL, the CSS selector for its event cards, and how to
// pull event fields out of one card. Per-site variability lives here and
// nowhere else.
package sites

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// DefaultLocation is the site-level fallback for events without a venue.
const DefaultLocation = "Sydney"

// Site is one scrape target.
type Site interface {
	// Name identifies the site; it becomes the Source of its events.
	Name() string

	// URL is the listing page to fetch.
	URL() string

	// CardSelector matches one DOM element per event listing.
	CardSelector() string

	// FetcherType is "browser" or "http".
	FetcherType() string

	// Extract parses candidate events out of the rendered document.
	// Cards missing a required field (title or url) are skipped, not
	// errors. Zero matching cards yields an empty slice and nil error;
	// that is the AI-fallback trigger, not a failure.
	Extract(doc *goquery.Document, now time.Time) []types.Event
}

// Build creates the site registry from configuration.
func Build(cfgs []config.SiteConfig) ([]Site, error) {
	if len(cfgs) == 0 {
		return nil, types.ErrNoSites
	}

	sites := make([]Site, 0, len(cfgs))
	for _, cfg := range cfgs {
		adapter := cfg.Adapter
		if adapter == "" {
			adapter = strings.ToLower(cfg.Name)
		}

		switch adapter {
		case "eventbrite":
			sites = append(sites, NewEventbrite(cfg))
		case "timeout":
			sites = append(sites, NewTimeOut(cfg))
		case "rules":
			site, err := NewRuleSite(cfg)
			if err != nil {
				return nil, fmt.Errorf("site %s: %w", cfg.Name, err)
			}
			sites = append(sites, site)
		default:
			if len(cfg.Fields) > 0 {
				site, err := NewRuleSite(cfg)
				if err != nil {
					return nil, fmt.Errorf("site %s: %w", cfg.Name, err)
				}
				sites = append(sites, site)
				continue
			}
			return nil, fmt.Errorf("site %s: unknown adapter %q", cfg.Name, adapter)
		}
	}
	return sites, nil
}

// fetcherType normalizes the configured fetcher, defaulting to browser.
func fetcherType(cfg config.SiteConfig) string {
	if cfg.Fetcher == "" {
		return "browser"
	}
	return cfg.Fetcher
}

// resolveURL makes a card link absolute against the listing page URL.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// cardText returns the trimmed text of the first selector match.
func cardText(card *goquery.Selection, selector string) string {
	return strings.TrimSpace(card.Find(selector).First().Text())
}

// cardAttr returns the trimmed attribute of the first selector match.
func cardAttr(card *goquery.Selection, selector, attr string) string {
	val, _ := card.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

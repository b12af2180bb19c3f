package sites

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/dates"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// RuleSite is a config-driven adapter: a card selector plus one field
// rule per event field. New sites become configuration instead of code
// as long as their markup maps cleanly onto the rule shape.
type RuleSite struct {
	name     string
	url      string
	selector string
	fetcher  string
	rules    []config.FieldRule
}

// NewRuleSite creates a rule-driven adapter from site config.
func NewRuleSite(cfg config.SiteConfig) (*RuleSite, error) {
	if cfg.Selector == "" {
		return nil, fmt.Errorf("rule site needs a card selector")
	}
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("rule site needs field rules")
	}
	return &RuleSite{
		name:     cfg.Name,
		url:      cfg.URL,
		selector: cfg.Selector,
		fetcher:  fetcherType(cfg),
		rules:    cfg.Fields,
	}, nil
}

func (r *RuleSite) Name() string         { return r.name }
func (r *RuleSite) URL() string          { return r.url }
func (r *RuleSite) CardSelector() string { return r.selector }
func (r *RuleSite) FetcherType() string  { return r.fetcher }

// Extract applies the field rules to every card in the document.
func (r *RuleSite) Extract(doc *goquery.Document, now time.Time) []types.Event {
	var events []types.Event

	doc.Find(r.selector).Each(func(i int, card *goquery.Selection) {
		fields := make(map[string]string, len(r.rules))
		for _, rule := range r.rules {
			if val := r.extractField(card, rule); val != "" {
				fields[rule.Name] = val
			}
		}

		title := fields["title"]
		link := resolveURL(r.url, fields["url"])
		if title == "" || link == "" {
			return
		}

		location := fields["location"]
		if location == "" {
			location = DefaultLocation
		}

		events = append(events, types.Event{
			Title:       title,
			Date:        dates.Normalize(fields["date"], now),
			Time:        fields["time"],
			Location:    location,
			Description: fields["description"],
			URL:         link,
			Image:       fields["image"],
			Category:    fields["category"],
			Price:       fields["price"],
			Source:      r.name,
			ScrapedAt:   now,
		})
	})

	return events
}

// extractField applies one rule to a card.
func (r *RuleSite) extractField(card *goquery.Selection, rule config.FieldRule) string {
	if rule.Type == "xpath" {
		if len(card.Nodes) == 0 {
			return ""
		}
		return extractXPath(card.Nodes[0], rule)
	}
	return extractCSS(card, rule)
}

// extractCSS pulls a value via goquery.
func extractCSS(card *goquery.Selection, rule config.FieldRule) string {
	sel := card.Find(rule.Selector).First()
	switch rule.Attribute {
	case "", "text":
		return strings.TrimSpace(sel.Text())
	case "html", "innerHTML":
		val, _ := sel.Html()
		return val
	default:
		val, _ := sel.Attr(rule.Attribute)
		return strings.TrimSpace(val)
	}
}

// extractXPath pulls a value via htmlquery, scoped to the card node.
func extractXPath(node *html.Node, rule config.FieldRule) string {
	found, err := htmlquery.Query(node, rule.Selector)
	if err != nil || found == nil {
		return ""
	}
	switch rule.Attribute {
	case "", "text":
		return strings.TrimSpace(htmlquery.InnerText(found))
	case "html", "innerHTML":
		return htmlquery.OutputHTML(found, false)
	default:
		return strings.TrimSpace(htmlquery.SelectAttr(found, rule.Attribute))
	}
}

package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/ai"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/fetcher"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/notify"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/sites"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

const eventbriteHTML = `<!DOCTYPE html>
<html><body>
<div class="search-event-card-square">
  <a class="event-card-link" href="/e/jazz-night-123"></a>
  <h2 class="event-card__title">Jazz Night at the Basement</h2>
  <p class="event-card__date">Sat, Jun 14, 7:00 PM</p>
  <div class="location-info__venue-name">The Basement</div>
</div>
<div class="search-event-card-square">
  <a class="event-card-link" href="/e/harbour-markets-456"></a>
  <h2 class="event-card__title">Harbour Markets</h2>
  <p class="event-card__date">Sun, Jun 15</p>
</div>
<div class="search-event-card-square">
  <a class="event-card-link" href="/e/film-night-789"></a>
  <h2 class="event-card__title">Open Air Film Night</h2>
  <p class="event-card__date">Fri, Jun 20</p>
</div>
</body></html>`

// A page whose layout no longer matches the configured selectors.
const redesignedHTML = `<!DOCTYPE html>
<html><body><main><section class="new-layout">nothing here</section></main></body></html>`

// fakeFetcher serves canned HTML keyed by URL.
type fakeFetcher struct {
	pages  map[string]string
	errs   map[string]error
	calls  int
	closed int
}

func (f *fakeFetcher) Fetch(ctx context.Context, req fetcher.Request) (string, error) {
	f.calls++
	if err, ok := f.errs[req.URL]; ok {
		return "", err
	}
	return f.pages[req.URL], nil
}

func (f *fakeFetcher) Close() error {
	f.closed++
	return nil
}

func (f *fakeFetcher) Type() string { return "fake" }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scraper.Sites = []config.SiteConfig{
		{
			Name:     "Eventbrite",
			URL:      "https://www.eventbrite.com.au/d/australia--sydney/all-events/",
			Selector: ".search-event-card-square",
			Adapter:  "eventbrite",
		},
		{
			Name:     "TimeOut",
			URL:      "https://www.timeout.com/sydney/things-to-do",
			Selector: ".tile",
			Adapter:  "timeout",
		},
	}
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config, f fetcher.Fetcher, store storage.Store) *Scraper {
	t.Helper()
	registry, err := sites.Build(cfg.Scraper.Sites)
	if err != nil {
		t.Fatalf("build sites: %v", err)
	}
	extractor := ai.NewExtractor(nil, cfg.AI.MaxHTMLChars, cfg.AI.MaxTokens, nil)
	notifier := notify.NewNotifier(store, nil, nil)
	return New(cfg, registry, extractor, store, notifier, nil,
		WithBrowserFetcher(f),
		WithHTTPFetcher(f),
		WithClock(func() time.Time { return testNow }))
}

func TestRunStructuralAndAIFallback(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"https://www.eventbrite.com.au/d/australia--sydney/all-events/": eventbriteHTML,
		"https://www.timeout.com/sydney/things-to-do":                   redesignedHTML,
	}}
	store := storage.NewMemoryStore()

	stats, err := newTestScraper(t, cfg, f, store).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Three structural Eventbrite events plus three AI placeholder
	// events for the redesigned TimeOut page.
	if stats.EventsScraped != 6 {
		t.Fatalf("eventsScraped = %d, want 6", stats.EventsScraped)
	}
	if stats.EventsInserted != 6 {
		t.Errorf("eventsInserted = %d, want 6", stats.EventsInserted)
	}
	if stats.AIFallbacks != 1 {
		t.Errorf("aiFallbacks = %d, want 1", stats.AIFallbacks)
	}

	events, _ := store.ListEvents(context.Background())
	if len(events) != 6 {
		t.Fatalf("len(stored) = %d, want 6", len(events))
	}

	aiCount := 0
	for _, ev := range events {
		if ev.UsedAI {
			aiCount++
			if ev.Source != "TimeOut" {
				t.Errorf("AI event source = %q, want TimeOut", ev.Source)
			}
		}
	}
	if aiCount != 3 {
		t.Errorf("AI-tagged events = %d, want 3", aiCount)
	}
}

func TestRunRepeatIsIdempotent(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"https://www.eventbrite.com.au/d/australia--sydney/all-events/": eventbriteHTML,
		"https://www.timeout.com/sydney/things-to-do":                   redesignedHTML,
	}}
	store := storage.NewMemoryStore()
	s := newTestScraper(t, cfg, f, store)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stats.EventsInserted != 0 {
		t.Errorf("second run inserted = %d, want 0", stats.EventsInserted)
	}
	if stats.EventsUpdated != 6 {
		t.Errorf("second run updated = %d, want 6", stats.EventsUpdated)
	}
	events, _ := store.ListEvents(context.Background())
	if len(events) != 6 {
		t.Fatalf("len(stored) after rerun = %d, want 6 not duplicated", len(events))
	}
}

func TestRunLeavesInjectedFetchersOpen(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"https://www.eventbrite.com.au/d/australia--sydney/all-events/": eventbriteHTML,
		"https://www.timeout.com/sydney/things-to-do":                   redesignedHTML,
	}}
	store := storage.NewMemoryStore()
	s := newTestScraper(t, cfg, f, store)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if f.closed != 0 {
		t.Fatalf("injected fetcher closed %d times after first run, want 0", f.closed)
	}

	// The second run must reuse the injected fetcher instead of
	// launching a real browser in its place.
	firstCalls := f.calls
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if f.calls <= firstCalls {
		t.Errorf("injected fetcher not used on second run: %d calls, had %d", f.calls, firstCalls)
	}
	if f.closed != 0 {
		t.Errorf("injected fetcher closed %d times, want 0", f.closed)
	}
}

func TestRunSiteFailureContinues(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{
		pages: map[string]string{
			"https://www.timeout.com/sydney/things-to-do": redesignedHTML,
		},
		errs: map[string]error{
			"https://www.eventbrite.com.au/d/australia--sydney/all-events/": &types.NavigationError{
				URL: "https://www.eventbrite.com.au/d/australia--sydney/all-events/",
			},
		},
	}
	store := storage.NewMemoryStore()

	stats, err := newTestScraper(t, cfg, f, store).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stats.SitesFailed != 1 {
		t.Errorf("sitesFailed = %d, want 1", stats.SitesFailed)
	}
	// The surviving site still produced its AI placeholders.
	if stats.EventsScraped != 3 {
		t.Errorf("eventsScraped = %d, want 3", stats.EventsScraped)
	}
}

func TestRunNoSites(t *testing.T) {
	cfg := testConfig()
	extractor := ai.NewExtractor(nil, cfg.AI.MaxHTMLChars, cfg.AI.MaxTokens, nil)
	store := storage.NewMemoryStore()
	s := New(cfg, nil, extractor, store, nil, nil)

	if _, err := s.Run(context.Background()); err != types.ErrNoSites {
		t.Errorf("err = %v, want ErrNoSites", err)
	}
}

func TestRunNotifiesOnlyInserted(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"https://www.eventbrite.com.au/d/australia--sydney/all-events/": eventbriteHTML,
		"https://www.timeout.com/sydney/things-to-do":                   redesignedHTML,
	}}
	store := storage.NewMemoryStore()
	_ = store.UpsertSubscriber(context.Background(), "a@example.com", testNow)
	s := newTestScraper(t, cfg, f, store)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	logs := store.NotificationLogs()
	if len(logs) != 1 {
		t.Fatalf("len(notification logs) = %d, want 1 (second run inserted nothing)", len(logs))
	}
	if logs[0].EventCount != 6 {
		t.Errorf("first notification eventCount = %d, want 6", logs[0].EventCount)
	}
}

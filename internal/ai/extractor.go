package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

const extractionSystemPrompt = "You are an AI assistant that extracts structured event data from HTML content."

// Extractor is the AI fallback for sites whose selectors match nothing.
// It never returns an error: when the model call or its output fails, a
// small deterministic placeholder set stands in so one broken site never
// aborts the scrape.
type Extractor struct {
	completer Completer
	maxChars  int
	maxTokens int
	logger    *slog.Logger
}

// NewExtractor creates an AI extractor. completer may be nil (no
// credentials configured); extraction then goes straight to placeholders.
func NewExtractor(completer Completer, maxChars, maxTokens int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		completer: completer,
		maxChars:  maxChars,
		maxTokens: maxTokens,
		logger:    logger.With("component", "ai_extractor"),
	}
}

// Extract asks the model for the events hiding in rawHTML. All output is
// tagged UsedAI and carries the source name.
func (x *Extractor) Extract(ctx context.Context, rawHTML, source string, now time.Time) []types.Event {
	if x.completer == nil {
		x.logger.Warn("no completion backend configured, using placeholder events", "source", source)
		return placeholderEvents(source, now)
	}

	response, err := x.completer.Complete(ctx, CompletionRequest{
		System:      extractionSystemPrompt,
		Prompt:      buildExtractionPrompt(rawHTML, source, x.maxChars),
		MaxTokens:   x.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		x.logger.Warn("model call failed, using placeholder events", "source", source, "error", err)
		return placeholderEvents(source, now)
	}

	raw, err := parseEventPayload(response)
	if err != nil {
		x.logger.Warn("model response unparseable, using placeholder events",
			"source", source,
			"error", &types.ModelResponseError{Provider: x.completer.Provider(), Err: err},
		)
		return placeholderEvents(source, now)
	}

	events := normalizeEvents(raw, source, now)
	if len(events) == 0 {
		x.logger.Warn("model returned no usable events, using placeholders", "source", source)
		return placeholderEvents(source, now)
	}

	x.logger.Info("ai extraction complete", "source", source, "count", len(events))
	return events
}

// buildExtractionPrompt renders the schema instruction with the HTML
// truncated to the configured character limit.
func buildExtractionPrompt(rawHTML, source string, maxChars int) string {
	if maxChars > 0 && len(rawHTML) > maxChars {
		rawHTML = rawHTML[:maxChars]
	}

	return fmt.Sprintf(`You are an expert event data extractor. Extract all Sydney events from the following HTML content.

For each event, extract:
- title (string): The name of the event
- date (string): The date of the event in YYYY-MM-DD format. If only a month or season is mentioned, use the first day of that month/season. If no date is found, use today's date.
- time (string, optional): The time of the event
- location (string): The venue or location of the event. If no specific venue is mentioned but it's clearly in Sydney, use "Sydney" as the location.
- description (string): A brief description of the event
- url (string, optional): The URL to the event page
- image (string, optional): The URL to an image for the event
- category (string, optional): The category of the event (e.g., music, arts, food, sports)
- price (string or number, optional): The price of the event

Source: %s

Return the data as a JSON object with an "events" key containing an array of event objects. Only include events that are definitely in Sydney, Australia.

HTML Content:
%s`, source, rawHTML)
}

// rawEvent is one event as the model emits it. Price may be a string or
// a number; everything else is text.
type rawEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Price       any    `json:"price"`
}

// parseEventPayload accepts the three shapes models produce: an object
// with an "events" array, a bare array, or a bare event object.
func parseEventPayload(response string) ([]rawEvent, error) {
	raw := cleanJSONResponse(response)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}

	var wrapper struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && len(wrapper.Events) > 0 {
		raw = string(wrapper.Events)
	}

	var list []rawEvent
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list, nil
	}

	var one rawEvent
	if err := json.Unmarshal([]byte(raw), &one); err == nil {
		return []rawEvent{one}, nil
	}

	return nil, fmt.Errorf("response is not JSON events")
}

// normalizeEvents applies the extraction policies: title-less events are
// discarded, bad dates become now, missing locations become the Sydney
// default, missing descriptions get a placeholder.
func normalizeEvents(raw []rawEvent, source string, now time.Time) []types.Event {
	events := make([]types.Event, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}

		date := now
		if r.Date != "" {
			for _, layout := range []string{"2006-01-02", time.RFC3339} {
				if t, err := time.Parse(layout, r.Date); err == nil {
					date = t
					break
				}
			}
		}

		location := strings.TrimSpace(r.Location)
		if location == "" {
			location = "Sydney"
		}

		description := strings.TrimSpace(r.Description)
		if description == "" {
			description = fmt.Sprintf("Details for %s. Check the website for more information.", r.Title)
		}

		events = append(events, types.Event{
			Title:       strings.TrimSpace(r.Title),
			Date:        date,
			Time:        r.Time,
			Location:    location,
			Description: description,
			URL:         r.URL,
			Image:       r.Image,
			Category:    r.Category,
			Price:       priceString(r.Price),
			Source:      source,
			ScrapedAt:   now,
			UsedAI:      true,
		})
	}
	return events
}

// priceString renders a string-or-number price field.
func priceString(price any) string {
	switch p := price.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", p)
	}
}

// placeholderEvents is the fallback-of-fallback: a deterministic set
// tagged with the source so the pipeline degrades instead of failing.
func placeholderEvents(source string, now time.Time) []types.Event {
	return []types.Event{
		{
			Title:       fmt.Sprintf("%s Featured Event", source),
			Date:        now.AddDate(0, 0, 3),
			Time:        "7:00 PM",
			Location:    "Sydney Opera House",
			Description: fmt.Sprintf("A special event featured on %s. Check the website for more details.", source),
			Category:    "arts",
			Price:       "From $30",
			Source:      source,
			ScrapedAt:   now,
			UsedAI:      true,
		},
		{
			Title:       "Sydney Weekend Festival",
			Date:        now.AddDate(0, 0, 5),
			Time:        "10:00 AM - 6:00 PM",
			Location:    "Darling Harbour, Sydney",
			Description: "A weekend of entertainment, food, and activities for the whole family.",
			Category:    "family",
			Price:       "Free",
			Source:      source,
			ScrapedAt:   now,
			UsedAI:      true,
		},
		{
			Title:       "Live Music at Sydney Bar",
			Date:        now.AddDate(0, 0, 2),
			Time:        "8:30 PM",
			Location:    "The Rocks, Sydney",
			Description: "Live performances from local Sydney bands and artists.",
			Category:    "music",
			Price:       "$25",
			Source:      source,
			ScrapedAt:   now,
			UsedAI:      true,
		},
	}
}

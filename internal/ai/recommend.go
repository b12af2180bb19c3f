package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

const recommendationSystemPrompt = "You are an AI assistant that provides personalized event recommendations."

// maxCandidates caps how many events are sent to the ranking model.
const maxCandidates = 20

// Recommender narrows the event set by the user's preferences and asks
// the model to pick and explain the top five.
type Recommender struct {
	completer Completer
	maxTokens int
	logger    *slog.Logger
}

// NewRecommender creates a recommender. completer may be nil; every
// request then yields an empty recommendation list.
func NewRecommender(completer Completer, maxTokens int, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		completer: completer,
		maxTokens: maxTokens,
		logger:    logger.With("component", "recommender"),
	}
}

// Recommend filters events by date window, category, and price bucket,
// each treating a missing event field as a pass, then ranks the
// survivors. Failures downstream of the filters yield an empty list, not
// an error.
func (r *Recommender) Recommend(ctx context.Context, prefs types.Preferences, events []types.Event) ([]types.Recommendation, error) {
	now := time.Now()
	if prefs.DateInfo != nil && !prefs.DateInfo.Today.IsZero() {
		now = prefs.DateInfo.Today
	}

	candidates := events
	if prefs.DateInfo != nil && prefs.DateInfo.Type != "" {
		candidates = FilterByDate(candidates, prefs.DateInfo.Type, now)
		r.logger.Debug("date filter applied", "window", prefs.DateInfo.Type, "remaining", len(candidates))
		// Do not wake the ranking model for an empty set.
		if len(candidates) == 0 {
			return []types.Recommendation{}, nil
		}
	}

	candidates = FilterByCategories(candidates, prefs.Categories)
	candidates = FilterByPrice(candidates, prefs.PriceRange)
	if len(candidates) == 0 {
		return []types.Recommendation{}, nil
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	if r.completer == nil {
		r.logger.Warn("no completion backend configured, returning empty recommendations")
		return []types.Recommendation{}, nil
	}

	response, err := r.completer.Complete(ctx, CompletionRequest{
		System:      recommendationSystemPrompt,
		Prompt:      buildRecommendationPrompt(prefs, candidates),
		MaxTokens:   r.maxTokens,
		Temperature: 0.5,
	})
	if err != nil {
		r.logger.Warn("ranking call failed, returning empty recommendations", "error", err)
		return []types.Recommendation{}, nil
	}

	var parsed struct {
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &parsed); err != nil {
		r.logger.Warn("ranking response unparseable, returning empty recommendations",
			"error", &types.ModelResponseError{Provider: r.completer.Provider(), Err: err},
		)
		return []types.Recommendation{}, nil
	}
	if parsed.Recommendations == nil {
		return []types.Recommendation{}, nil
	}
	return parsed.Recommendations, nil
}

// buildRecommendationPrompt renders preferences and candidates for the
// ranking model.
func buildRecommendationPrompt(prefs types.Preferences, candidates []types.Event) string {
	prefsJSON, _ := json.Marshal(prefs)
	eventsJSON, _ := json.Marshal(candidates)

	return fmt.Sprintf(`Based on the user's preferences and the available events, recommend the top 5 events that would be most relevant.

User preferences:
%s

Available events:
%s

For each recommendation, provide:
1. The event ID as "eventId"
2. A brief explanation of why this event matches the user's preferences, as "explanation"

Return the data as a JSON object with a "recommendations" array.
If there are no suitable events, return an empty recommendations array.`, prefsJSON, eventsJSON)
}

// --- Preference filters ---

// startOfDay truncates t to its calendar day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterByDate keeps events inside the named window relative to ref.
// Windows: today, tomorrow, weekend, week (through next Sunday
// inclusive), month. Unknown window names pass everything.
func FilterByDate(events []types.Event, window string, ref time.Time) []types.Event {
	today := startOfDay(ref)
	tomorrow := today.AddDate(0, 0, 1)

	// End of week is the coming Sunday; a Sunday ref ends the week today.
	daysUntilSunday := (7 - int(today.Weekday())) % 7
	endOfWeek := today.AddDate(0, 0, daysUntilSunday)

	// Last calendar day of the current month.
	endOfMonth := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location())

	var out []types.Event
	for _, ev := range events {
		day := startOfDay(ev.Date)

		var keep bool
		switch window {
		case "today":
			keep = day.Equal(today)
		case "tomorrow":
			keep = day.Equal(tomorrow)
		case "weekend":
			wd := day.Weekday()
			keep = (wd == time.Saturday || wd == time.Sunday) && !day.Before(today)
		case "week":
			keep = !day.Before(today) && !day.After(endOfWeek)
		case "month":
			keep = !day.Before(today) && !day.After(endOfMonth)
		default:
			keep = true
		}
		if keep {
			out = append(out, ev)
		}
	}
	return out
}

// FilterByCategories keeps events whose category is in the preference
// list. Events without a category pass.
func FilterByCategories(events []types.Event, categories []string) []types.Event {
	if len(categories) == 0 {
		return events
	}

	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[strings.ToLower(c)] = true
	}

	var out []types.Event
	for _, ev := range events {
		if ev.Category == "" || wanted[strings.ToLower(ev.Category)] {
			out = append(out, ev)
		}
	}
	return out
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// FilterByPrice keeps events in the named bucket: free, low (<25),
// medium (25-75), high (>75). Events without a price, or with one that
// does not parse, pass.
func FilterByPrice(events []types.Event, priceRange string) []types.Event {
	if priceRange == "" || priceRange == "any" {
		return events
	}

	var out []types.Event
	for _, ev := range events {
		if ev.Price == "" {
			out = append(out, ev)
			continue
		}

		price, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(ev.Price, ""), 64)
		if err != nil {
			out = append(out, ev)
			continue
		}

		var keep bool
		switch priceRange {
		case "free":
			keep = price == 0 || strings.Contains(strings.ToLower(ev.Price), "free")
		case "low":
			keep = price < 25
		case "medium":
			keep = price >= 25 && price <= 75
		case "high":
			keep = price > 75
		default:
			keep = true
		}
		if keep {
			out = append(out, ev)
		}
	}
	return out
}

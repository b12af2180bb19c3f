package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// ref is a Tuesday; the week ends Sunday June 15.
var ref = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func datedEvent(id string, date time.Time) types.Event {
	return types.Event{ID: id, Title: id, Date: date, Source: "test"}
}

func TestFilterByDateWeekBoundary(t *testing.T) {
	endOfWeek := time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC)
	justAfter := endOfWeek.Add(time.Second)

	events := []types.Event{
		datedEvent("inside", endOfWeek),
		datedEvent("outside", justAfter),
	}

	got := FilterByDate(events, "week", ref)

	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].ID, "end-of-week 23:59:59 is inside the window; one second later is not")
}

func TestFilterByDateWindows(t *testing.T) {
	today := time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	saturday := time.Date(2025, time.June, 14, 10, 0, 0, 0, time.UTC)
	lastSaturday := time.Date(2025, time.June, 7, 10, 0, 0, 0, time.UTC)
	endOfMonth := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
	nextMonth := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)

	events := []types.Event{
		datedEvent("today", today),
		datedEvent("tomorrow", tomorrow),
		datedEvent("saturday", saturday),
		datedEvent("last-saturday", lastSaturday),
		datedEvent("end-of-month", endOfMonth),
		datedEvent("next-month", nextMonth),
	}

	ids := func(evs []types.Event) []string {
		out := make([]string, len(evs))
		for i, ev := range evs {
			out[i] = ev.ID
		}
		return out
	}

	assert.Equal(t, []string{"today"}, ids(FilterByDate(events, "today", ref)))
	assert.Equal(t, []string{"tomorrow"}, ids(FilterByDate(events, "tomorrow", ref)))
	assert.Equal(t, []string{"saturday"}, ids(FilterByDate(events, "weekend", ref)),
		"weekend keeps Sat/Sun on or after today only")
	assert.Equal(t, []string{"today", "tomorrow", "saturday"}, ids(FilterByDate(events, "week", ref)))
	assert.Equal(t, []string{"today", "tomorrow", "saturday", "end-of-month"}, ids(FilterByDate(events, "month", ref)))
	assert.Len(t, FilterByDate(events, "someday", ref), len(events), "unknown window passes everything")
}

func TestFilterByCategoriesInclusiveOnMissing(t *testing.T) {
	events := []types.Event{
		{ID: "music", Category: "Music"},
		{ID: "sports", Category: "sports"},
		{ID: "uncategorized"},
	}

	got := FilterByCategories(events, []string{"music", "arts"})

	require.Len(t, got, 2)
	assert.Equal(t, "music", got[0].ID)
	assert.Equal(t, "uncategorized", got[1].ID, "events without a category pass")
}

func TestFilterByPriceBuckets(t *testing.T) {
	events := []types.Event{
		{ID: "free", Price: "Free"},
		{ID: "cheap", Price: "$15"},
		{ID: "mid", Price: "From $30"},
		{ID: "steep", Price: "120"},
		{ID: "unpriced"},
	}

	low := FilterByPrice(events, "low")
	require.Len(t, low, 3)
	// "Free" has no digits, so it passes as unparseable; $15 is low;
	// unpriced always passes.
	assert.Equal(t, "free", low[0].ID)
	assert.Equal(t, "cheap", low[1].ID)
	assert.Equal(t, "unpriced", low[2].ID)

	high := FilterByPrice(events, "high")
	require.Len(t, high, 3)
	assert.Equal(t, "steep", high[1].ID)

	assert.Len(t, FilterByPrice(events, "any"), len(events))
}

func TestRecommendEmptyDateWindowSkipsRanking(t *testing.T) {
	completer := &fakeCompleter{response: `{"recommendations": [{"eventId": "x", "explanation": "y"}]}`}
	r := NewRecommender(completer, 2000, testLogger)

	prefs := types.Preferences{
		DateInfo: &types.DateInfo{Type: "today", Today: ref},
	}
	// Nothing dated today.
	events := []types.Event{datedEvent("later", ref.AddDate(0, 0, 10))}

	recs, err := r.Recommend(context.Background(), prefs, events)

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, completer.calls, "ranking model must not be called for an empty candidate set")
}

func TestRecommendRanksCandidates(t *testing.T) {
	completer := &fakeCompleter{response: `{"recommendations": [
		{"eventId": "today", "explanation": "It is on today and matches your taste."}
	]}`}
	r := NewRecommender(completer, 2000, testLogger)

	prefs := types.Preferences{
		Categories: []string{"music"},
		PriceRange: "any",
		DateInfo:   &types.DateInfo{Type: "today", Today: ref},
	}
	events := []types.Event{
		datedEvent("today", ref),
		datedEvent("later", ref.AddDate(0, 0, 10)),
	}

	recs, err := r.Recommend(context.Background(), prefs, events)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "today", recs[0].EventID)
	assert.Equal(t, 1, completer.calls)
}

func TestRecommendUnparseableResponseYieldsEmpty(t *testing.T) {
	completer := &fakeCompleter{response: "I would recommend the jazz night."}
	r := NewRecommender(completer, 2000, testLogger)

	recs, err := r.Recommend(context.Background(), types.Preferences{}, []types.Event{datedEvent("a", ref)})

	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSummarizeWithoutBackend(t *testing.T) {
	s := NewSummarizer(nil, testLogger)

	_, err := s.Summarize(context.Background(), types.Event{Title: "Jazz Night"})

	var cfgErr *types.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestSummarize(t *testing.T) {
	completer := &fakeCompleter{response: "  A great night of jazz by the harbour.  "}
	s := NewSummarizer(completer, testLogger)

	summary, err := s.Summarize(context.Background(), types.Event{Title: "Jazz Night"})

	require.NoError(t, err)
	assert.Equal(t, "A great night of jazz by the harbour.", summary)
}

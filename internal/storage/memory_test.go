package storage

import (
	"context"
	"testing"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testEvent(title, source string) types.Event {
	return types.Event{
		Title:     title,
		Date:      testNow.AddDate(0, 0, 3),
		Location:  "Sydney",
		URL:       "https://example.com/" + title,
		Source:    source,
		ScrapedAt: testNow,
	}
}

func TestUpsertEventsDedupOnTitleAndSource(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.UpsertEvents(ctx, []types.Event{testEvent("Vivid Sydney", "Eventbrite")})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.InsertedCount != 1 || first.UpdatedCount != 0 {
		t.Fatalf("first upsert counts = %d/%d, want 1/0", first.InsertedCount, first.UpdatedCount)
	}

	updated := testEvent("Vivid Sydney", "Eventbrite")
	updated.Location = "Circular Quay"
	updated.Description = "Light festival"
	second, err := store.UpsertEvents(ctx, []types.Event{updated})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.InsertedCount != 0 || second.UpdatedCount != 1 {
		t.Fatalf("second upsert counts = %d/%d, want 0/1", second.InsertedCount, second.UpdatedCount)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Location != "Circular Quay" {
		t.Errorf("location = %q, want later fields to win", events[0].Location)
	}
	if events[0].ID == "" {
		t.Error("stored event has empty ID")
	}
}

func TestUpsertEventsSameTitleDifferentSource(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.UpsertEvents(ctx, []types.Event{
		testEvent("Harbour Cruise", "Eventbrite"),
		testEvent("Harbour Cruise", "TimeOut"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	events, _ := store.ListEvents(ctx)
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2 distinct records", len(events))
	}
}

func TestUpsertEventsEmptyInput(t *testing.T) {
	store := NewMemoryStore()

	result, err := store.UpsertEvents(context.Background(), nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if result.InsertedCount != 0 || result.UpdatedCount != 0 || len(result.Inserted) != 0 {
		t.Errorf("empty upsert changed state: %+v", result)
	}

	events, _ := store.ListEvents(context.Background())
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestListEventsSortedByDate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	late := testEvent("Later", "Eventbrite")
	late.Date = testNow.AddDate(0, 0, 10)
	early := testEvent("Sooner", "Eventbrite")
	early.Date = testNow.AddDate(0, 0, 1)

	if _, err := store.UpsertEvents(ctx, []types.Event{late, early}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	events, _ := store.ListEvents(ctx)
	if events[0].Title != "Sooner" || events[1].Title != "Later" {
		t.Errorf("events not sorted by date ascending: %q, %q", events[0].Title, events[1].Title)
	}
}

func TestGetEventNotFound(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetEvent(context.Background(), "missing"); err != types.ErrEventNotFound {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}

func TestGetEventByID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	result, err := store.UpsertEvents(ctx, []types.Event{testEvent("Opera Night", "Eventbrite")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id := result.Inserted[0].ID

	event, err := store.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if event.Title != "Opera Night" {
		t.Errorf("title = %q, want Opera Night", event.Title)
	}
}

func TestUpsertSubscriberRefreshesExisting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.UpsertSubscriber(ctx, "a@example.com", testNow); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	later := testNow.Add(24 * time.Hour)
	if err := store.UpsertSubscriber(ctx, "a@example.com", later); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	subs, _ := store.ListSubscribers(ctx)
	if len(subs) != 1 {
		t.Fatalf("len(subscribers) = %d, want 1", len(subs))
	}
	if !subs[0].SubscribedAt.Equal(testNow) {
		t.Errorf("subscribedAt changed on re-subscribe: %v", subs[0].SubscribedAt)
	}
	if !subs[0].LastUpdated.Equal(later) {
		t.Errorf("lastUpdated = %v, want %v", subs[0].LastUpdated, later)
	}
}

func TestDeleteSubscriber(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.UpsertSubscriber(ctx, "a@example.com", testNow)
	if err := store.DeleteSubscriber(ctx, "a@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	subs, _ := store.ListSubscribers(ctx)
	if len(subs) != 0 {
		t.Errorf("len(subscribers) = %d, want 0", len(subs))
	}
}

func TestListSubscriptionsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.AddSubscription(ctx, types.Subscription{Email: "old@example.com", Timestamp: testNow})
	_ = store.AddSubscription(ctx, types.Subscription{Email: "new@example.com", Timestamp: testNow.Add(time.Hour)})

	subs, _ := store.ListSubscriptions(ctx)
	if subs[0].Email != "new@example.com" {
		t.Errorf("first subscription = %q, want newest first", subs[0].Email)
	}
}

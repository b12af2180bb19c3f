package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type recordingSender struct {
	sent []string
	body string
	err  error
}

func (s *recordingSender) Send(ctx context.Context, email, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	s.body = body
	return nil
}

func newEvent(id, title string) types.Event {
	return types.Event{
		ID:       id,
		Title:    title,
		Date:     testNow.AddDate(0, 0, 2),
		Location: "Sydney",
		URL:      "https://example.com/" + id,
		Source:   "Eventbrite",
	}
}

func TestNotifyNewEventsEmptyInputIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &recordingSender{}
	_ = store.UpsertSubscriber(context.Background(), "a@example.com", testNow)

	NewNotifier(store, sender, nil).NotifyNewEvents(context.Background(), nil, testNow)

	if len(sender.sent) != 0 {
		t.Errorf("sent %d notifications, want 0", len(sender.sent))
	}
	if len(store.NotificationLogs()) != 0 {
		t.Error("notification log written for empty input")
	}
}

func TestNotifyNewEventsNoSubscribersIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	sender := &recordingSender{}

	NewNotifier(store, sender, nil).NotifyNewEvents(context.Background(), []types.Event{newEvent("1", "Vivid")}, testNow)

	if len(sender.sent) != 0 {
		t.Errorf("sent %d notifications, want 0", len(sender.sent))
	}
	if len(store.NotificationLogs()) != 0 {
		t.Error("notification log written with no subscribers")
	}
}

func TestNotifyNewEventsFansOutAndLogs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sender := &recordingSender{}
	_ = store.UpsertSubscriber(ctx, "a@example.com", testNow)
	_ = store.UpsertSubscriber(ctx, "b@example.com", testNow)

	events := []types.Event{newEvent("1", "Vivid Sydney"), newEvent("2", "Opera Night")}
	NewNotifier(store, sender, nil).NotifyNewEvents(ctx, events, testNow)

	if len(sender.sent) != 2 {
		t.Fatalf("sent to %d subscribers, want 2", len(sender.sent))
	}
	if !strings.Contains(sender.body, "Vivid Sydney") || !strings.Contains(sender.body, "Opera Night") {
		t.Errorf("digest missing event titles: %q", sender.body)
	}

	logs := store.NotificationLogs()
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].SubscriberCount != 2 || logs[0].EventCount != 2 {
		t.Errorf("log counts = %d subscribers / %d events, want 2/2", logs[0].SubscriberCount, logs[0].EventCount)
	}
	if len(logs[0].EventIDs) != 2 {
		t.Errorf("log has %d event IDs, want 2", len(logs[0].EventIDs))
	}
}

func TestNotifyNewEventsSenderFailureDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sender := &recordingSender{err: errors.New("smtp down")}
	_ = store.UpsertSubscriber(ctx, "a@example.com", testNow)

	NewNotifier(store, sender, nil).NotifyNewEvents(ctx, []types.Event{newEvent("1", "Vivid")}, testNow)

	logs := store.NotificationLogs()
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].SubscriberCount != 0 {
		t.Errorf("subscriberCount = %d, want 0 successful sends", logs[0].SubscriberCount)
	}
}

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// MemoryStore implements Store in memory. It backs tests and `--store
// memory` development runs where no MongoDB is available.
type MemoryStore struct {
	mu sync.Mutex

	events      map[types.EventKey]*types.Event
	subs        []types.Subscription
	subscribers map[string]*types.Subscriber
	notifyLog   []types.NotificationLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:      make(map[types.EventKey]*types.Event),
		subscribers: make(map[string]*types.Subscriber),
	}
}

// UpsertEvents upserts each event on (title, source).
func (s *MemoryStore) UpsertEvents(ctx context.Context, events []types.Event) (*types.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &types.UpsertResult{}
	for _, event := range events {
		key := event.Key()
		if existing, ok := s.events[key]; ok {
			event.ID = existing.ID
			*existing = event
			result.UpdatedCount++
			continue
		}

		event.ID = uuid.NewString()
		stored := event
		s.events[key] = &stored
		result.Inserted = append(result.Inserted, event)
		result.InsertedCount++
	}
	return result, nil
}

// ListEvents returns all events sorted by date ascending.
func (s *MemoryStore) ListEvents(ctx context.Context) ([]types.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]types.Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, *ev)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// GetEvent returns one event by ID.
func (s *MemoryStore) GetEvent(ctx context.Context, id string) (*types.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events {
		if ev.ID == id {
			found := *ev
			return &found, nil
		}
	}
	return nil, types.ErrEventNotFound
}

// AddSubscription appends one subscription record.
func (s *MemoryStore) AddSubscription(ctx context.Context, sub types.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return nil
}

// ListSubscriptions returns subscriptions newest first.
func (s *MemoryStore) ListSubscriptions(ctx context.Context) ([]types.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make([]types.Subscription, len(s.subs))
	copy(subs, s.subs)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Timestamp.After(subs[j].Timestamp) })
	return subs, nil
}

// UpsertSubscriber creates or refreshes a subscriber.
func (s *MemoryStore) UpsertSubscriber(ctx context.Context, email string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.subscribers[email]; ok {
		existing.LastUpdated = now
		return nil
	}
	s.subscribers[email] = &types.Subscriber{
		Email:        email,
		SubscribedAt: now,
		LastUpdated:  now,
	}
	return nil
}

// DeleteSubscriber removes a subscriber by email.
func (s *MemoryStore) DeleteSubscriber(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, email)
	return nil
}

// ListSubscribers returns subscribers newest first.
func (s *MemoryStore) ListSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make([]types.Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubscribedAt.After(subs[j].SubscribedAt) })
	return subs, nil
}

// AppendNotificationLog records one batch notification send.
func (s *MemoryStore) AppendNotificationLog(ctx context.Context, entry types.NotificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLog = append(s.notifyLog, entry)
	return nil
}

// NotificationLogs returns the recorded sends. Test helper.
func (s *MemoryStore) NotificationLogs() []types.NotificationLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]types.NotificationLog, len(s.notifyLog))
	copy(logs, s.notifyLog)
	return logs
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

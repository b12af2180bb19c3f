package storage

import (
	"context"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// Store is the persistence boundary for events, subscribers,
// subscriptions, and notification logs.
type Store interface {
	// UpsertEvents inserts or overwrites each event keyed on
	// (title, source). An empty input is a no-op, not an error.
	UpsertEvents(ctx context.Context, events []types.Event) (*types.UpsertResult, error)

	// ListEvents returns all events sorted by date ascending.
	ListEvents(ctx context.Context) ([]types.Event, error)

	// GetEvent returns one event by its store-assigned ID.
	// Returns types.ErrEventNotFound when the ID is unknown.
	GetEvent(ctx context.Context, id string) (*types.Event, error)

	// AddSubscription appends one subscription record. Append-only.
	AddSubscription(ctx context.Context, sub types.Subscription) error

	// ListSubscriptions returns subscriptions newest first.
	ListSubscriptions(ctx context.Context) ([]types.Subscription, error)

	// UpsertSubscriber creates or refreshes a subscriber by email.
	UpsertSubscriber(ctx context.Context, email string, now time.Time) error

	// DeleteSubscriber removes a subscriber. Unknown emails are not an
	// error.
	DeleteSubscriber(ctx context.Context, email string) error

	// ListSubscribers returns subscribers newest first.
	ListSubscribers(ctx context.Context) ([]types.Subscriber, error)

	// AppendNotificationLog records one batch notification send.
	AppendNotificationLog(ctx context.Context, entry types.NotificationLog) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

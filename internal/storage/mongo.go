package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// Collection names. Not schema-enforced at the storage layer.
const (
	colEvents           = "events"
	colSubscriptions    = "subscriptions"
	colSubscribers      = "subscribers"
	colNotificationLogs = "notification_logs"
)

// MongoStore implements Store on MongoDB. The handle is constructed at
// process start and closed at shutdown; there is no cached singleton.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(cfg *config.MongoConfig, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	logger = logger.With("component", "mongo_store")
	logger.Info("connected to mongodb", "database", cfg.Database)

	return &MongoStore{
		client:       client,
		db:           client.Database(cfg.Database),
		queryTimeout: cfg.QueryTimeout,
		logger:       logger,
	}, nil
}

// eventDoc carries the Mongo _id alongside the event fields.
type eventDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Event types.Event        `bson:",inline"`
}

// UpsertEvents upserts each event on (title, source). The store's native
// atomic upsert is the only dedup coordination across runs.
func (s *MongoStore) UpsertEvents(ctx context.Context, events []types.Event) (*types.UpsertResult, error) {
	result := &types.UpsertResult{}
	if len(events) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	col := s.db.Collection(colEvents)
	for _, event := range events {
		filter := bson.M{"title": event.Title, "source": event.Source}
		res, err := col.UpdateOne(ctx, filter, bson.M{"$set": event}, options.Update().SetUpsert(true))
		if err != nil {
			return nil, &types.StoreError{Op: "upsert event", Err: err}
		}

		if res.UpsertedID != nil {
			if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
				event.ID = oid.Hex()
			}
			result.Inserted = append(result.Inserted, event)
			result.InsertedCount++
		} else {
			result.UpdatedCount++
		}
	}

	s.logger.Debug("events upserted",
		"inserted", result.InsertedCount,
		"updated", result.UpdatedCount,
	)
	return result, nil
}

// ListEvents returns all events sorted by date ascending.
func (s *MongoStore) ListEvents(ctx context.Context) ([]types.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cursor, err := s.db.Collection(colEvents).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, &types.StoreError{Op: "list events", Err: err}
	}
	defer cursor.Close(ctx)

	var events []types.Event
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, &types.StoreError{Op: "decode event", Err: err}
		}
		doc.Event.ID = doc.ID.Hex()
		events = append(events, doc.Event)
	}
	if err := cursor.Err(); err != nil {
		return nil, &types.StoreError{Op: "list events", Err: err}
	}
	return events, nil
}

// GetEvent returns one event by ObjectID hex.
func (s *MongoStore) GetEvent(ctx context.Context, id string) (*types.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.ErrEventNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var doc eventDoc
	err = s.db.Collection(colEvents).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrEventNotFound
	}
	if err != nil {
		return nil, &types.StoreError{Op: "get event", Err: err}
	}

	doc.Event.ID = doc.ID.Hex()
	return &doc.Event, nil
}

// AddSubscription appends one subscription record.
func (s *MongoStore) AddSubscription(ctx context.Context, sub types.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.Collection(colSubscriptions).InsertOne(ctx, sub); err != nil {
		return &types.StoreError{Op: "add subscription", Err: err}
	}
	return nil
}

// ListSubscriptions returns subscriptions newest first.
func (s *MongoStore) ListSubscriptions(ctx context.Context) ([]types.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cursor, err := s.db.Collection(colSubscriptions).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, &types.StoreError{Op: "list subscriptions", Err: err}
	}
	defer cursor.Close(ctx)

	var subs []types.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, &types.StoreError{Op: "list subscriptions", Err: err}
	}
	return subs, nil
}

// UpsertSubscriber creates or refreshes a subscriber. The subscribedAt
// timestamp is only written on first opt-in.
func (s *MongoStore) UpsertSubscriber(ctx context.Context, email string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.Collection(colSubscribers).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         bson.M{"email": email, "lastUpdated": now},
			"$setOnInsert": bson.M{"subscribedAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &types.StoreError{Op: "upsert subscriber", Err: err}
	}
	return nil
}

// DeleteSubscriber removes a subscriber by email.
func (s *MongoStore) DeleteSubscriber(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.Collection(colSubscribers).DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return &types.StoreError{Op: "delete subscriber", Err: err}
	}
	return nil
}

// ListSubscribers returns subscribers newest first.
func (s *MongoStore) ListSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cursor, err := s.db.Collection(colSubscribers).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "subscribedAt", Value: -1}}))
	if err != nil {
		return nil, &types.StoreError{Op: "list subscribers", Err: err}
	}
	defer cursor.Close(ctx)

	var subs []types.Subscriber
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, &types.StoreError{Op: "list subscribers", Err: err}
	}
	return subs, nil
}

// AppendNotificationLog records one batch notification send.
func (s *MongoStore) AppendNotificationLog(ctx context.Context, entry types.NotificationLog) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.Collection(colNotificationLogs).InsertOne(ctx, entry); err != nil {
		return &types.StoreError{Op: "append notification log", Err: err}
	}
	return nil
}

// Ping verifies the connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	s.logger.Info("mongodb store closing")
	return s.client.Disconnect(ctx)
}

package types

import (
	"time"
)

// Event represents a single normalized event listing.
type Event struct {
	// ID is assigned by the store on insert (ObjectID hex for MongoDB).
	ID string `json:"id,omitempty" bson:"-"`

	// Title is the event name. Required; (Title, Source) is the dedup key.
	Title string `json:"title" bson:"title"`

	// Date is the absolute event timestamp. Defaults to capture time when
	// the source date string could not be parsed.
	Date time.Time `json:"date" bson:"date"`

	// Time is the human-readable time string as shown on the source site.
	Time string `json:"time,omitempty" bson:"time,omitempty"`

	Location    string `json:"location" bson:"location"`
	Description string `json:"description" bson:"description"`
	URL         string `json:"url" bson:"url"`
	Image       string `json:"image,omitempty" bson:"image,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Price       string `json:"price,omitempty" bson:"price,omitempty"`

	// Source is the site name this event was scraped from. Required.
	Source string `json:"source" bson:"source"`

	// ScrapedAt is when this record was captured.
	ScrapedAt time.Time `json:"scrapedAt" bson:"scrapedAt"`

	// UsedAI is true when the record came from the AI fallback path.
	UsedAI bool `json:"usedAI" bson:"usedAI"`
}

// Key returns the dedup key for this event.
func (e *Event) Key() EventKey {
	return EventKey{Title: e.Title, Source: e.Source}
}

// EventKey identifies an event for deduplication purposes.
type EventKey struct {
	Title  string
	Source string
}

// Subscriber is an email address opted in to new-event notifications.
type Subscriber struct {
	Email        string    `json:"email" bson:"email"`
	SubscribedAt time.Time `json:"subscribedAt" bson:"subscribedAt"`
	LastUpdated  time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

// Subscription is one expression of interest in a specific event.
// Append-only; never deduplicated.
type Subscription struct {
	Email      string    `json:"email" bson:"email"`
	EventID    string    `json:"eventId" bson:"eventId"`
	EventTitle string    `json:"eventTitle,omitempty" bson:"eventTitle,omitempty"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// NotificationLog records one batch notification send. Append-only.
type NotificationLog struct {
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
	SubscriberCount int       `json:"subscriberCount" bson:"subscriberCount"`
	EventCount      int       `json:"eventCount" bson:"eventCount"`
	EventIDs        []string  `json:"eventIds" bson:"eventIds"`
}

// DateInfo describes the date window of a recommendation request.
type DateInfo struct {
	// Type is one of "today", "tomorrow", "weekend", "week", "month".
	Type string `json:"type"`

	// Today is the reference date; zero means the current time.
	Today time.Time `json:"today,omitempty"`
}

// Preferences are the user inputs to the recommendation filter.
type Preferences struct {
	Categories []string  `json:"categories,omitempty"`
	PriceRange string    `json:"priceRange,omitempty"` // "any", "free", "low", "medium", "high"
	DateInfo   *DateInfo `json:"dateInfo,omitempty"`
}

// Recommendation pairs an event with the model's reason for picking it.
type Recommendation struct {
	EventID     string `json:"eventId"`
	Explanation string `json:"explanation"`
}

// UpsertResult summarizes one batch upsert against the event collection.
type UpsertResult struct {
	// Inserted holds the newly created records with store-assigned IDs,
	// in input order. Updated records are not included.
	Inserted []Event

	InsertedCount int
	UpdatedCount  int
}

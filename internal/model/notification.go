package model

import (
	"encoding/json"
	"time"
)

// EventName identifies one of the push events the server emits over
// the realtime stream.
type EventName string

const (
	EventNewListing      EventName = "new-listing"
	EventListingAccepted EventName = "listing-accepted"
	EventNewTask         EventName = "new-task"
	EventFoodPicked      EventName = "food-picked"
	EventFoodDelivered   EventName = "food-delivered"
	EventReceiveMessage  EventName = "receive-message"
)

// EventNames lists every push event the client subscribes to.
// Transport lifecycle events (connected, disconnected) are not part of
// this set and never become notifications.
var EventNames = []EventName{
	EventNewListing,
	EventListingAccepted,
	EventNewTask,
	EventFoodPicked,
	EventFoodDelivered,
	EventReceiveMessage,
}

// Known reports whether name is one of the subscribed push events.
func (n EventName) Known() bool {
	for _, e := range EventNames {
		if e == n {
			return true
		}
	}
	return false
}

// Notification is a log entry derived from one inbound push event.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Event is the push event that produced this entry.
	Event EventName `json:"event"`

	// Payload is the raw event body as received from the stream.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// ReceivedAt is when the event arrived on the stream.
	ReceivedAt time.Time `json:"received_at"`
}

// Title returns a short human-readable label for the notification's event.
func (n Notification) Title() string {
	switch n.Event {
	case EventNewListing:
		return "New donation posted nearby"
	case EventListingAccepted:
		return "Your donation was accepted"
	case EventNewTask:
		return "New delivery task available"
	case EventFoodPicked:
		return "Food picked up"
	case EventFoodDelivered:
		return "Food delivered"
	case EventReceiveMessage:
		return "New message"
	default:
		return string(n.Event)
	}
}

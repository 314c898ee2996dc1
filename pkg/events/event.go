package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type codes published by the application.
const (
	UserRegistered = "USER_REGISTERED"
	UserLogin      = "USER_LOGIN"
	UserLogout     = "USER_LOGOUT"
	ChatCreated    = "CHAT_CREATED"
	ChatTitled     = "CHAT_TITLED"
	ChatRenamed    = "CHAT_RENAMED"
	ChatFavorited  = "CHAT_FAVORITED"
	ChatDeleted    = "CHAT_DELETED"
	MessageSent    = "MESSAGE_SENT"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID is unique per occurrence and stable across retries.
	EventID() string

	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

// Encode renders any Event in the BaseEvent wire shape.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		ID:         e.EventID(),
		Type:       e.EventType(),
		Data:       e.Payload(),
		OccurredAt: e.Timestamp(),
	})
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

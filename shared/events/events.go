package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	UserCreated    = "user.created"
	MessageCreated = "message.created"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	MessageEventsStream = "message.events"
)

// Event is the envelope written to every stream entry.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// DecodeData re-decodes the generic payload of an event read from a stream
// into its concrete type.
func DecodeData[T any](event Event) (T, error) {
	var data T
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return data, fmt.Errorf("failed to marshal %s payload: %w", event.Type, err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}
	return data, nil
}

// User events
type UserCreatedEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Message events. The content blob is never put on the stream.
type MessageCreatedEvent struct {
	MessageID       string    `json:"messageId"`
	SenderUserID    string    `json:"senderUserId"`
	RecipientUserID string    `json:"recipientUserId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent announces a committed mutation of one record. Consumers reload
// state from the database; the event carries no record payload.
type ChangeEvent struct {
	EventID   string    `json:"event_id"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent stamps a change with a fresh event id and the current time.
func NewChangeEvent(resource, action string, id int64) *ChangeEvent {
	return &ChangeEvent{
		EventID:   uuid.NewString(),
		Resource:  resource,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeEventFromJSON decodes an event and rejects ones without a resource.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Resource == "" {
		return nil, fmt.Errorf("change event %q has no resource", msg.EventID)
	}
	return &msg, nil
}

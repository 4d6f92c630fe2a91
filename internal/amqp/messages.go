package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Subject kinds carried by a change message.
const (
	KindRecord = "record"
	KindEntity = "entity"
)

// Actions carried by a change message.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChangedMessage announces a write to the record store. It carries
// only identifiers; consumers reload whatever they need.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(kind, id, action string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and validates a message body.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindRecord && msg.Kind != KindEntity {
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message without id")
	}
	return &msg, nil
}

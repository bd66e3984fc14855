package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage is the wire form of a ledger change notification. The mirror
// worker treats it as a hint that the ledger moved; it re-reads state from
// storage rather than trusting the message payload.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangeMessage builds a message stamped with the current time.
func NewChangeMessage(collection, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Op:         op,
		ID:         id,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var m ChangeMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

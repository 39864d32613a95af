package events

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is the transport form of an outbox entry on external streams.
type Envelope struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventType       string          `json:"event_type"`
	TimestampMicros int64           `json:"timestamp"`
	Payload         json.RawMessage `json:"payload"`
}

var errMissingEventType = errors.New("events: event type missing")

// NewEnvelope wraps entry for publishing. The timestamp is the outbox insert time.
func NewEnvelope(entry OutboxEntry) (Envelope, error) {
	eventType := strings.TrimSpace(entry.Type)
	if eventType == "" {
		return Envelope{}, errMissingEventType
	}
	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := entry.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		EventID:         entry.ID,
		EventType:       eventType,
		TimestampMicros: ts.UTC().UnixMicro(),
		Payload:         append(json.RawMessage(nil), payload...),
	}, nil
}

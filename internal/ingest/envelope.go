package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightmill/storefront-insights/pkg/enums"
)

// Envelope is the canonical business-event Pub/Sub envelope. The kind rides
// in message attributes; the body carries the event id, timestamp, and the
// kind-specific payload.
type Envelope struct {
	EventID    string
	Kind       enums.EventKind
	OccurredAt time.Time
	Payload    json.RawMessage
}

type payloadEnvelope struct {
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a Pub/Sub message body plus attributes into the
// canonical envelope.
func DecodeEnvelope(data []byte, attributes map[string]string) (*Envelope, error) {
	var stored payloadEnvelope
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	kindStr := strings.TrimSpace(attributes["event_kind"])
	kind, err := enums.ParseEventKind(kindStr)
	if err != nil {
		return nil, fmt.Errorf("event_kind: %w", err)
	}

	eventID := strings.TrimSpace(stored.EventID)
	if eventID == "" {
		eventID = strings.TrimSpace(attributes["event_id"])
	}
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	occurredAt := stored.OccurredAt
	if occurredAt.IsZero() {
		if raw := strings.TrimSpace(attributes["occurred_at"]); raw != "" {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, raw); parseErr == nil {
				occurredAt = parsed
			}
		}
	}
	if occurredAt.IsZero() {
		return nil, errors.New("occurred_at missing")
	}

	return &Envelope{
		EventID:    eventID,
		Kind:       kind,
		OccurredAt: occurredAt.UTC(),
		Payload:    stored.Data,
	}, nil
}

package store

import (
	"encoding/json"
	"time"
)

// Event is the envelope every write publishes to the event feed. The feed is
// additive audit/reporting data; canonical state lives in the ledger and the
// client store.
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

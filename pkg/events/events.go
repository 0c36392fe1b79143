// Package events publishes turn lifecycle events on a watermill bus.
package events

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// TopicTurns is the topic turn events are published on.
const TopicTurns = "turns"

// EventType names a turn lifecycle event.
type EventType string

const (
	EventTypeTurnReceived  EventType = "turn.received"
	EventTypeTurnCompleted EventType = "turn.completed"
	EventTypeTurnFailed    EventType = "turn.failed"
	EventTypeTurnRejected  EventType = "turn.rejected"
)

// TurnEvent describes one step of a turn.
type TurnEvent struct {
	Type           EventType       `json:"type"`
	TurnID         string          `json:"turn_id"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Family         string          `json:"family,omitempty"`
	Version        string          `json:"version,omitempty"`
	Action         string          `json:"action,omitempty"`
	Status         int             `json:"status,omitempty"`
	Error          string          `json:"error,omitempty"`
	Duration       time.Duration   `json:"duration,omitempty"`
	Request        json.RawMessage `json:"request,omitempty"`
	Response       json.RawMessage `json:"response,omitempty"`
	Time           time.Time       `json:"time"`
}

// NewTurnEventFromJSON decodes a published payload.
func NewTurnEventFromJSON(b []byte) (*TurnEvent, error) {
	var e TurnEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errors.Wrap(err, "decode turn event")
	}
	if e.Type == "" {
		return nil, errors.New("turn event without type")
	}
	return &e, nil
}

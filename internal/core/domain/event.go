package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSessionOpened EventType = "session.opened"
	EventSessionClosed EventType = "session.closed"
	EventVoteCast      EventType = "vote.cast"
)

type Event struct {
	Type       EventType `json:"type"`
	SessionID  int64     `json:"session_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

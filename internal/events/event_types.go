package events

import (
	"time"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReporterRegistered EventType = "reporter_registered"
	EventIssueSubmitted     EventType = "issue_submitted"
	EventSessionStarted     EventType = "session_started"
	EventSessionEnded       EventType = "session_ended"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReporterRegisteredPayload payload.
type ReporterRegisteredPayload struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// IssueSubmittedPayload payload.
type IssueSubmittedPayload struct {
	IssueID  string `json:"issue_id"`
	Address  string `json:"address"`
	Coords   string `json:"coords"`
	HasImage bool   `json:"has_image"`
}

// SessionPayload payload for session start and end.
type SessionPayload struct {
	SessionID string      `json:"session_id"`
	Role      domain.Role `json:"role"`
}

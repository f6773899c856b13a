package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

const (
	EventSource  = "testing-service"
	EventVersion = "1.0"
)

// Topics. The topic name doubles as the event type.
const (
	TopicResultSubmitted = "result.submitted"
	TopicResultReset     = "result.reset"
	TopicRoleChanged     = "identity.role_changed"
)

// Event is the envelope written to every topic
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// rawEvent is the consumer side of Event, with Data left undecoded
type rawEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// ===== PAYLOADS =====

type ResultSubmittedEvent struct {
	StudentID   uint      `json:"student_id"`
	TestID      uint      `json:"test_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

type ResultResetEvent struct {
	StudentID     uint   `json:"student_id"`
	TestID        uint   `json:"test_id"`
	TeacherUserID string `json:"teacher_user_id"`
}

// RoleChangedEvent is produced by the identity provider
type RoleChangedEvent struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

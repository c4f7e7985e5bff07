package events

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const eventVersion = "1.0"

// BaseEvent carries the fields shared by every sync event
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a new base event with defaults
func NewBaseEvent(eventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   eventVersion,
	}
}

// SanitizeUTF8 drops invalid byte sequences, which provider error bodies sometimes carry
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

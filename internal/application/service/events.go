package service

import (
	"context"
)

const (
	EventProfileCreated   = "profile.created"
	EventProfileUpdated   = "profile.updated"
	EventProfileDeleted   = "profile.deleted"
	EventThemeChanged     = "profile.theme_changed"
	EventEndorsementAdded = "endorsement.added"
)

// Event is the envelope published for every profile mutation.
type Event struct {
	Type      string         `json:"type"`
	ProfileID string         `json:"profile_id"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationSummary is the read-side projection returned by list queries.
// It is built straight from storage, never from a loaded aggregate.
type ConversationSummary struct {
	ID             uuid.UUID
	Title          string
	Status         Status
	NativeLang     string
	TargetLang     string
	MessageCount   int
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Summarize projects an aggregate into its summary form. Stores that keep
// whole aggregates, such as the in-memory one, use it to answer list queries.
func (c *Conversation) Summarize() ConversationSummary {
	return ConversationSummary{
		ID:             c.id,
		Title:          c.title,
		Status:         c.status,
		NativeLang:     c.nativeLang.Code(),
		TargetLang:     c.targetLang.Code(),
		MessageCount:   len(c.messages),
		CreatedAt:      c.createdAt,
		LastActivityAt: c.lastActivityAt,
	}
}

// Package services – tutoring use cases and the ports they depend on.
//
// Every use case is a stateless orchestrator built from injected ports and
// exposes a single Execute(ctx, command) method. Use cases never retry and
// never swallow errors: domain failures surface as they are, and
// infrastructure failures arrive already wrapped in the domain taxonomy by
// the adapters implementing the ports.
//
// Tracing follows the rest of the codebase: each Execute runs in an
// OpenTelemetry span named after the use case, with conversation and student
// ids as attributes. Logs come from the request-scoped zerolog logger carried
// by ctx.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ConversationRepository persists whole Conversation aggregates.
//
// FindByID returns (nil, nil) when the id is unknown. Implementations must not
// hand out references that stay shared after the call returns.
type ConversationRepository interface {
	Save(ctx context.Context, c *domain.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// ConversationReader is the read side used for listing. Results are ordered
// newest-created first and never include deleted conversations; archived ones
// are included only when includeArchived is set.
type ConversationReader interface {
	StudentConversations(ctx context.Context, studentID uuid.UUID, limit, offset int, includeArchived bool) ([]domain.ConversationSummary, error)
}

// ResponseGenerator produces the teacher's next message for a history.
// Failures are reported as *domain.GenerationError.
type ResponseGenerator interface {
	TeacherResponse(ctx context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (string, error)
}

// Clock supplies UTC timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// IDGenerator mints identifiers for new conversations and messages.
type IDGenerator func() uuid.UUID

// GetByID loads a conversation and turns absence into a not-found error.
func GetByID(ctx context.Context, repo ConversationRepository, id uuid.UUID) (*domain.Conversation, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ConversationNotFound(id)
	}
	return c, nil
}

// getOwned is GetByID plus the ownership check. A foreign conversation is
// reported exactly like a missing one.
func getOwned(ctx context.Context, repo ConversationRepository, id, studentID uuid.UUID) (*domain.Conversation, error) {
	c, err := GetByID(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(studentID) {
		return nil, domain.ConversationNotFound(id)
	}
	return c, nil
}

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

func idsOrRandom(g IDGenerator) IDGenerator {
	if g == nil {
		return uuid.New
	}
	return g
}

package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

type ArchiveConversationCommand struct {
	ConversationID uuid.UUID
	StudentID      uuid.UUID
}

// ArchiveConversation makes an owned conversation read-only. It follows the
// same ownership rule as DeleteConversation.
type ArchiveConversation struct {
	repo  ConversationRepository
	clock Clock
}

func NewArchiveConversation(repo ConversationRepository, clock Clock) *ArchiveConversation {
	return &ArchiveConversation{repo: repo, clock: clockOrSystem(clock)}
}

func (uc *ArchiveConversation) Execute(ctx context.Context, cmd ArchiveConversationCommand) (err error) {
	ctx, span := tracer().Start(ctx, "ArchiveConversation", trace.WithAttributes(
		conversationAttr(cmd.ConversationID), studentAttr(cmd.StudentID)))
	defer func() { endSpan(span, err) }()

	conv, err := getOwned(ctx, uc.repo, cmd.ConversationID, cmd.StudentID)
	if err != nil {
		return err
	}
	if conv.Status().IsDeleted() {
		return &domain.NotWritableError{ConversationID: conv.ID(), Status: conv.Status()}
	}
	conv.Archive(uc.clock.Now())
	return uc.repo.Save(ctx, conv)
}

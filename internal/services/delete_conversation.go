package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// DeleteConversationCommand soft-deletes a conversation on behalf of its owner.
type DeleteConversationCommand struct {
	ConversationID uuid.UUID
	StudentID      uuid.UUID
}

type DeleteConversation struct {
	repo  ConversationRepository
	clock Clock
}

func NewDeleteConversation(repo ConversationRepository, clock Clock) *DeleteConversation {
	return &DeleteConversation{repo: repo, clock: clockOrSystem(clock)}
}

// Execute marks the conversation deleted and saves it. A conversation owned
// by someone else fails with the same not-found error as a missing one.
func (uc *DeleteConversation) Execute(ctx context.Context, cmd DeleteConversationCommand) (err error) {
	ctx, span := tracer().Start(ctx, "DeleteConversation", trace.WithAttributes(
		conversationAttr(cmd.ConversationID), studentAttr(cmd.StudentID)))
	defer func() { endSpan(span, err) }()

	conv, err := getOwned(ctx, uc.repo, cmd.ConversationID, cmd.StudentID)
	if err != nil {
		return err
	}
	conv.Delete(uc.clock.Now())
	return uc.repo.Save(ctx, conv)
}

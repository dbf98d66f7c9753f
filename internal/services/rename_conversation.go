package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type RenameConversationCommand struct {
	ConversationID uuid.UUID
	StudentID      uuid.UUID
	Title          string
}

// RenameConversation changes the title of an owned, active conversation.
type RenameConversation struct {
	repo  ConversationRepository
	clock Clock
}

func NewRenameConversation(repo ConversationRepository, clock Clock) *RenameConversation {
	return &RenameConversation{repo: repo, clock: clockOrSystem(clock)}
}

func (uc *RenameConversation) Execute(ctx context.Context, cmd RenameConversationCommand) (err error) {
	ctx, span := tracer().Start(ctx, "RenameConversation", trace.WithAttributes(
		conversationAttr(cmd.ConversationID), studentAttr(cmd.StudentID)))
	defer func() { endSpan(span, err) }()

	conv, err := getOwned(ctx, uc.repo, cmd.ConversationID, cmd.StudentID)
	if err != nil {
		return err
	}
	if err = conv.ModifyTitle(cmd.Title, uc.clock.Now()); err != nil {
		return err
	}
	return uc.repo.Save(ctx, conv)
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// CreateConversationCommand opens a conversation for a student. Language
// codes are validated by the domain.
type CreateConversationCommand struct {
	StudentID  uuid.UUID
	Title      string
	NativeLang string
	TargetLang string
}

// CreateConversationResult carries the new id and the summary of the fresh
// conversation.
type CreateConversationResult struct {
	ConversationID uuid.UUID
	Summary        domain.ConversationSummary
}

type CreateConversation struct {
	repo  ConversationRepository
	clock Clock
	newID IDGenerator
}

// NewCreateConversation wires the use case. A nil clock or id generator falls
// back to the system clock and random UUIDs.
func NewCreateConversation(repo ConversationRepository, clock Clock, newID IDGenerator) *CreateConversation {
	return &CreateConversation{repo: repo, clock: clockOrSystem(clock), newID: idsOrRandom(newID)}
}

func (uc *CreateConversation) Execute(ctx context.Context, cmd CreateConversationCommand) (res CreateConversationResult, err error) {
	ctx, span := tracer().Start(ctx, "CreateConversation", trace.WithAttributes(studentAttr(cmd.StudentID)))
	defer func() { endSpan(span, err) }()

	native, err := domain.NewLanguage(cmd.NativeLang)
	if err != nil {
		return res, err
	}
	target, err := domain.NewLanguage(cmd.TargetLang)
	if err != nil {
		return res, err
	}

	id := uc.newID()
	conv, err := domain.NewConversation(id, cmd.StudentID, cmd.Title, native, target, uc.clock.Now())
	if err != nil {
		return res, err
	}
	if err = uc.repo.Save(ctx, conv); err != nil {
		return res, err
	}
	span.SetAttributes(conversationAttr(id))

	zerolog.Ctx(ctx).Debug().
		Str("conversation_id", id.String()).
		Str("pair", native.Code()+"->"+target.Code()).
		Msg("conversation created")

	return CreateConversationResult{ConversationID: id, Summary: conv.Summarize()}, nil
}

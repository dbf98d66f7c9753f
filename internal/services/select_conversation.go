package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

type SelectConversationQuery struct {
	ConversationID uuid.UUID
	StudentID      uuid.UUID
}

// MessageView is the lightweight form of a message returned to readers.
type MessageView struct {
	ID        uuid.UUID
	Role      domain.Role
	Content   string
	CreatedAt time.Time
}

type SelectConversationResult struct {
	ConversationID uuid.UUID
	Title          string
	NativeLang     string
	TargetLang     string
	Status         domain.Status
	CreatedAt      time.Time
	LastActivityAt time.Time
	Messages       []MessageView
}

// SelectConversation returns a conversation with its full history. Only the
// owner may read it; anyone else gets not-found.
type SelectConversation struct {
	repo ConversationRepository
}

func NewSelectConversation(repo ConversationRepository) *SelectConversation {
	return &SelectConversation{repo: repo}
}

func (uc *SelectConversation) Execute(ctx context.Context, q SelectConversationQuery) (res SelectConversationResult, err error) {
	ctx, span := tracer().Start(ctx, "SelectConversation", trace.WithAttributes(
		conversationAttr(q.ConversationID), studentAttr(q.StudentID)))
	defer func() { endSpan(span, err) }()

	conv, err := getOwned(ctx, uc.repo, q.ConversationID, q.StudentID)
	if err != nil {
		return res, err
	}

	msgs := conv.Messages()
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{ID: m.ID(), Role: m.Role(), Content: m.Content(), CreatedAt: m.CreatedAt()})
	}
	return SelectConversationResult{
		ConversationID: conv.ID(),
		Title:          conv.Title(),
		NativeLang:     conv.NativeLang().Code(),
		TargetLang:     conv.TargetLang().Code(),
		Status:         conv.Status(),
		CreatedAt:      conv.CreatedAt(),
		LastActivityAt: conv.LastActivityAt(),
		Messages:       views,
	}, nil
}

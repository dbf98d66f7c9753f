package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

type ListStudentConversationsQuery struct {
	StudentID       uuid.UUID
	Limit           int
	Offset          int
	IncludeArchived bool
}

type ListStudentConversationsResult struct {
	Conversations []domain.ConversationSummary
	Limit         int
	Offset        int
}

// ListStudentConversations pages through a student's summaries without
// loading any aggregate.
type ListStudentConversations struct {
	reader ConversationReader
}

func NewListStudentConversations(reader ConversationReader) *ListStudentConversations {
	return &ListStudentConversations{reader: reader}
}

// Execute hands the window to the reader unchanged, so a student with N
// listed conversations gets exactly max(0, min(limit, N-offset)) summaries.
// A non-positive limit yields an empty page without a query; a negative
// offset is a validation error.
func (uc *ListStudentConversations) Execute(ctx context.Context, q ListStudentConversationsQuery) (res ListStudentConversationsResult, err error) {
	ctx, span := tracer().Start(ctx, "ListStudentConversations", trace.WithAttributes(
		studentAttr(q.StudentID),
		attribute.Int("page.limit", q.Limit),
		attribute.Int("page.offset", q.Offset),
	))
	defer func() { endSpan(span, err) }()

	if q.Offset < 0 {
		return res, domain.ErrNegativeOffset
	}
	res = ListStudentConversationsResult{Conversations: []domain.ConversationSummary{}, Limit: q.Limit, Offset: q.Offset}
	if q.Limit <= 0 {
		return res, nil
	}

	items, err := uc.reader.StudentConversations(ctx, q.StudentID, q.Limit, q.Offset, q.IncludeArchived)
	if err != nil {
		return ListStudentConversationsResult{}, err
	}
	if items != nil {
		res.Conversations = items
	}
	return res, nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// SendMessageCommand carries one student turn and the teacher settings for
// the reply.
type SendMessageCommand struct {
	ConversationID uuid.UUID
	StudentMessage string
	Creativity     domain.CreativityLevel
	Style          domain.GenerationStyle
	// StudentID, when set, must own the conversation; a mismatch is
	// reported as not-found.
	StudentID uuid.UUID
}

type SendMessageResult struct {
	TeacherMessageID uuid.UUID
	StudentMessageID uuid.UUID
	TeacherMessage   string
}

// SendMessage appends the student's message, asks the generator for the
// teacher's reply, appends it, and saves the aggregate once.
//
// Nothing is persisted unless both appends and the generation succeed. Two
// concurrent calls on the same conversation race at Save; the last one wins.
type SendMessage struct {
	repo      ConversationRepository
	generator ResponseGenerator
	clock     Clock
	newID     IDGenerator
}

func NewSendMessage(repo ConversationRepository, generator ResponseGenerator, clock Clock, newID IDGenerator) *SendMessage {
	return &SendMessage{repo: repo, generator: generator, clock: clockOrSystem(clock), newID: idsOrRandom(newID)}
}

func (uc *SendMessage) Execute(ctx context.Context, cmd SendMessageCommand) (res SendMessageResult, err error) {
	ctx, span := tracer().Start(ctx, "SendMessage", trace.WithAttributes(conversationAttr(cmd.ConversationID)))
	defer func() { endSpan(span, err) }()

	conv, err := GetByID(ctx, uc.repo, cmd.ConversationID)
	if err != nil {
		return res, err
	}
	if cmd.StudentID != uuid.Nil && !conv.IsOwnedBy(cmd.StudentID) {
		return res, domain.ConversationNotFound(cmd.ConversationID)
	}

	student, err := conv.AddMessage(uc.newID(), uc.clock.Now(), domain.RoleStudent, cmd.StudentMessage)
	if err != nil {
		return res, err
	}

	history := conv.Messages()
	profile, err := domain.NewTeacherProfile(cmd.Creativity, cmd.Style)
	if err != nil {
		return res, err
	}

	reply, err := uc.generate(ctx, history, profile, conv.NativeLang(), conv.TargetLang())
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("conversation_id", cmd.ConversationID.String()).
			Msg("teacher response failed")
		return res, err
	}

	teacher, err := conv.AddMessage(uc.newID(), uc.clock.Now(), domain.RoleTeacher, reply)
	if err != nil {
		return res, err
	}

	if err = uc.repo.Save(ctx, conv); err != nil {
		return res, err
	}

	return SendMessageResult{
		TeacherMessageID: teacher.ID(),
		StudentMessageID: student.ID(),
		TeacherMessage:   teacher.Content(),
	}, nil
}

func (uc *SendMessage) generate(ctx context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (reply string, err error) {
	ctx, span := tracer().Start(ctx, "SendMessage.generate", trace.WithAttributes(
		attribute.Int("history.len", len(history)),
		attribute.String("teacher.style", profile.Style.String()),
		attribute.String("teacher.creativity", profile.Creativity.String()),
	))
	defer func() { endSpan(span, err) }()

	return uc.generator.TeacherResponse(ctx, history, profile, native, target)
}

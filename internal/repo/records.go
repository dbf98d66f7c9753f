package repo

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ConversationRecord is the row form of a Conversation aggregate.
type ConversationRecord struct {
	ID             string          `gorm:"type:VARCHAR(36);primaryKey"`
	StudentID      string          `gorm:"type:VARCHAR(36) NOT NULL;index:idx_conversations_student_created,priority:1"`
	Title          string          `gorm:"type:VARCHAR(400) NOT NULL"`
	NativeLang     string          `gorm:"type:VARCHAR(2) NOT NULL"`
	TargetLang     string          `gorm:"type:VARCHAR(2) NOT NULL"`
	Status         string          `gorm:"type:VARCHAR(16) NOT NULL;index"`
	CreatedAt      time.Time       `gorm:"type:TIMESTAMP NOT NULL;index:idx_conversations_student_created,priority:2"`
	LastActivityAt time.Time       `gorm:"type:TIMESTAMP NOT NULL"`
	Messages       []MessageRecord `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

func (ConversationRecord) TableName() string { return "conversations" }

// MessageRecord is one message row; Position keeps insertion order.
type MessageRecord struct {
	ID             string    `gorm:"type:VARCHAR(36);primaryKey"`
	ConversationID string    `gorm:"type:VARCHAR(36) NOT NULL;index:idx_messages_conversation_position,priority:1"`
	Position       int       `gorm:"NOT NULL;index:idx_messages_conversation_position,priority:2"`
	Role           string    `gorm:"type:VARCHAR(16) NOT NULL"`
	Content        string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt      time.Time `gorm:"type:TIMESTAMP NOT NULL"`
}

func (MessageRecord) TableName() string { return "conversation_messages" }

func toRecord(c *domain.Conversation) ConversationRecord {
	s := c.Snapshot()
	rec := ConversationRecord{
		ID:             s.ID.String(),
		StudentID:      s.StudentID.String(),
		Title:          s.Title,
		NativeLang:     s.NativeLang.Code(),
		TargetLang:     s.TargetLang.Code(),
		Status:         s.Status.String(),
		CreatedAt:      s.CreatedAt.UTC(),
		LastActivityAt: s.LastActivityAt.UTC(),
		Messages:       make([]MessageRecord, 0, len(s.Messages)),
	}
	for i, m := range s.Messages {
		rec.Messages = append(rec.Messages, MessageRecord{
			ID:             m.ID().String(),
			ConversationID: rec.ID,
			Position:       i,
			Role:           m.Role().String(),
			Content:        m.Content(),
			CreatedAt:      m.CreatedAt().UTC(),
		})
	}
	return rec
}

// fromRecord rehydrates an aggregate. Messages must already be ordered by
// Position.
func fromRecord(rec ConversationRecord) (*domain.Conversation, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("conversation id %q: %w", rec.ID, err)
	}
	student, err := uuid.Parse(rec.StudentID)
	if err != nil {
		return nil, fmt.Errorf("student id %q: %w", rec.StudentID, err)
	}
	native, err := domain.NewLanguage(rec.NativeLang)
	if err != nil {
		return nil, err
	}
	target, err := domain.NewLanguage(rec.TargetLang)
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.ChatMessage, 0, len(rec.Messages))
	for _, mr := range rec.Messages {
		mid, err := uuid.Parse(mr.ID)
		if err != nil {
			return nil, fmt.Errorf("message id %q: %w", mr.ID, err)
		}
		m, err := domain.RestoreChatMessage(mid, domain.Role(mr.Role), mr.Content, mr.CreatedAt.UTC())
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}

	return domain.RestoreConversation(domain.ConversationSnapshot{
		ID:             id,
		StudentID:      student,
		Title:          rec.Title,
		NativeLang:     native,
		TargetLang:     target,
		Status:         domain.Status(rec.Status),
		CreatedAt:      rec.CreatedAt.UTC(),
		LastActivityAt: rec.LastActivityAt.UTC(),
		Messages:       msgs,
	})
}

// listedStatuses returns the statuses a list query may return.
func listedStatuses(includeArchived bool) []string {
	if includeArchived {
		return []string{domain.StatusActive.String(), domain.StatusArchived.String()}
	}
	return []string{domain.StatusActive.String()}
}

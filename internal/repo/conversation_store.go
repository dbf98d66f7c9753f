package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ConversationBackend is everything the HTTP layer needs from a conversation
// store: the write-side repository, the read-side list query, and the list
// statistics used for ETags. Both ConversationStore and MemoryStore satisfy it.
type ConversationBackend interface {
	Save(ctx context.Context, c *domain.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	Remove(ctx context.Context, id uuid.UUID) error
	StudentConversations(ctx context.Context, studentID uuid.UUID, limit, offset int, includeArchived bool) ([]domain.ConversationSummary, error)
	ConversationStats(ctx context.Context, studentID uuid.UUID, includeArchived bool) (count int64, latest *time.Time, err error)
}

// messageBatchSize bounds the rows per INSERT so long histories stay under
// driver parameter limits.
const messageBatchSize = 100

// ConversationStore persists aggregates with GORM. One conversation row plus
// one row per message; the aggregate is always written as a whole.
type ConversationStore struct {
	DB *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore { return &ConversationStore{DB: db} }

// Save upserts the conversation and all of its messages in one transaction.
func (s *ConversationStore) Save(ctx context.Context, c *domain.Conversation) error {
	rec := toRecord(c)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "status", "last_activity_at"}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		if len(rec.Messages) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "position"}),
		}).CreateInBatches(&rec.Messages, messageBatchSize).Error
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save conversation", Err: err}
	}
	return nil
}

// FindByID loads a conversation with its ordered messages, or (nil, nil).
func (s *ConversationStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var rec ConversationRecord
	err := s.DB.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id.String()).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find conversation", Err: err}
	}
	conv, err := fromRecord(rec)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "decode conversation", Err: err}
	}
	return conv, nil
}

// Remove hard-deletes a conversation and its messages.
func (s *ConversationStore) Remove(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id.String()).Delete(&MessageRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id.String()).Delete(&ConversationRecord{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return &domain.PersistenceError{Op: "remove conversation", Err: err}
	}
	if affected == 0 {
		return domain.ConversationNotFound(id)
	}
	return nil
}

type summaryRow struct {
	ID             string
	Title          string
	Status         string
	NativeLang     string
	TargetLang     string
	MessageCount   int
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// StudentConversations lists summaries newest-created first.
func (s *ConversationStore) StudentConversations(ctx context.Context, studentID uuid.UUID, limit, offset int, includeArchived bool) ([]domain.ConversationSummary, error) {
	var rows []summaryRow
	err := s.DB.WithContext(ctx).
		Model(&ConversationRecord{}).
		Select("conversations.id, conversations.title, conversations.status, conversations.native_lang, conversations.target_lang, " +
			"conversations.created_at, conversations.last_activity_at, " +
			"(SELECT COUNT(*) FROM conversation_messages m WHERE m.conversation_id = conversations.id) AS message_count").
		Where("conversations.student_id = ? AND conversations.status IN ?", studentID.String(), listedStatuses(includeArchived)).
		Order("conversations.created_at DESC").
		Order("conversations.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list conversations", Err: err}
	}

	out := make([]domain.ConversationSummary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "decode summary", Err: err}
		}
		out = append(out, domain.ConversationSummary{
			ID:             id,
			Title:          r.Title,
			Status:         domain.Status(r.Status),
			NativeLang:     r.NativeLang,
			TargetLang:     r.TargetLang,
			MessageCount:   r.MessageCount,
			CreatedAt:      r.CreatedAt.UTC(),
			LastActivityAt: r.LastActivityAt.UTC(),
		})
	}
	return out, nil
}

// Package repo implements persistence for the tutoring domain. This file
// provides the small aggregate query behind conditional list responses
// (weak ETags) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ConversationStats returns how many conversations a list query for the
// student would cover, and the greatest last_activity_at among them.
//
// Any change visible through the list (a new conversation, a new message, a
// rename, an archive or delete) moves one of the two values. When nothing
// matches, count is 0 and latest is nil.
func (s *ConversationStore) ConversationStats(ctx context.Context, studentID uuid.UUID, includeArchived bool) (count int64, latest *time.Time, err error) {
	q := s.DB.WithContext(ctx).
		Model(&ConversationRecord{}).
		Where("student_id = ? AND status IN ?", studentID.String(), listedStatuses(includeArchived)).
		Session(&gorm.Session{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, &domain.PersistenceError{Op: "conversation stats", Err: err}
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Order+limit rather than MAX(), which SQLite returns as TEXT.
	var row struct {
		LastActivityAt time.Time
	}
	if err = q.Select("last_activity_at").Order("last_activity_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, &domain.PersistenceError{Op: "conversation stats", Err: err}
	}
	ts := row.LastActivityAt.UTC()
	return count, &ts, nil
}

package domain

import "time"

// Idempotency records the outcome of a SendMessage call for a client-chosen
// key, scoped to (student_id, conversation_id, key). A retry carrying the same
// key within the TTL is answered from this record and never reaches the
// teacher again.
type Idempotency struct {
	ID               string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	StudentID        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_student_conversation_key,priority:1"`
	ConversationID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_student_conversation_key,priority:2"`
	Key              string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_student_conversation_key,priority:3"`
	TeacherMessageID string    `gorm:"type:TEXT NOT NULL"`
	StudentMessageID string    `gorm:"type:TEXT NOT NULL"`
	TeacherMessage   string    `gorm:"type:TEXT NOT NULL"`
	Status           int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt        time.Time `gorm:"type:TIMESTAMP NOT NULL;autoCreateTime"`
	ExpiresAt        time.Time `gorm:"type:TIMESTAMP NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record can no longer be replayed at now.
func (r Idempotency) Expired(now time.Time) bool { return !now.Before(r.ExpiresAt) }

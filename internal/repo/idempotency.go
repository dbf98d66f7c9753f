// Package repo implements persistence for the tutoring domain. This file
// provides the stores behind the Idempotency-Key replay of SendMessage.
package repo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (student_id, conversation_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// IdempotencyStore finds and records SendMessage outcomes by key.
// Lookup returns (nil, nil) on a miss or an expired record.
type IdempotencyStore interface {
	Lookup(ctx context.Context, studentID, conversationID, key string, now time.Time) (*domain.Idempotency, error)
	Remember(ctx context.Context, rec domain.Idempotency, ttl time.Duration) error
}

// GetIdempotency returns a live record or (nil, nil).
func GetIdempotency(ctx context.Context, db *gorm.DB, studentID, conversationID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(key) == "" {
		return nil, nil
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("student_id = ? AND conversation_id = ? AND key = ? AND expires_at > ?", studentID, conversationID, key, now).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get idempotency", Err: err}
	}
	return &rec, nil
}

// CreateIdempotency inserts rec with the given TTL and returns ErrDuplicate
// on a unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, rec domain.Idempotency, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(ttl)
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		// glebarez/sqlite reports UNIQUE violations as plain text.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") ||
			strings.Contains(low, "duplicate key value") {
			return nil, ErrDuplicate
		}
		return nil, &domain.PersistenceError{Op: "create idempotency", Err: err}
	}
	return &rec, nil
}

// SQLIdempotencyStore adapts the GORM helpers to IdempotencyStore.
type SQLIdempotencyStore struct {
	DB *gorm.DB
}

func NewSQLIdempotencyStore(db *gorm.DB) *SQLIdempotencyStore { return &SQLIdempotencyStore{DB: db} }

func (s *SQLIdempotencyStore) Lookup(ctx context.Context, studentID, conversationID, key string, now time.Time) (*domain.Idempotency, error) {
	return GetIdempotency(ctx, s.DB, studentID, conversationID, key, now)
}

func (s *SQLIdempotencyStore) Remember(ctx context.Context, rec domain.Idempotency, ttl time.Duration) error {
	_, err := CreateIdempotency(ctx, s.DB, rec, ttl)
	return err
}

// MemoryIdempotencyStore is the in-process variant used with the memory driver.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	recs map[string]domain.Idempotency
	now  func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		recs: make(map[string]domain.Idempotency),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func idemKey(studentID, conversationID, key string) string {
	return studentID + "\x00" + conversationID + "\x00" + key
}

func (s *MemoryIdempotencyStore) Lookup(_ context.Context, studentID, conversationID, key string, now time.Time) (*domain.Idempotency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idemKey(studentID, conversationID, key)
	rec, ok := s.recs[k]
	if !ok {
		return nil, nil
	}
	if rec.Expired(now) {
		delete(s.recs, k)
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryIdempotencyStore) Remember(_ context.Context, rec domain.Idempotency, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	k := idemKey(rec.StudentID, rec.ConversationID, rec.Key)
	if cur, ok := s.recs[k]; ok && !cur.Expired(now) {
		return ErrDuplicate
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(ttl)
	s.recs[k] = rec
	return nil
}

package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// MemoryStore keeps aggregates in process memory. It copies on every save
// and load, so callers never share a mutable Conversation with the store or
// with each other.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[uuid.UUID]*domain.Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[uuid.UUID]*domain.Conversation)}
}

func (s *MemoryStore) Save(_ context.Context, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.ID()] = c.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[id]; !ok {
		return domain.ConversationNotFound(id)
	}
	delete(s.convs, id)
	return nil
}

// listed returns the student's listable conversations, newest first.
// Callers must hold at least the read lock.
func (s *MemoryStore) listed(studentID uuid.UUID, includeArchived bool) []*domain.Conversation {
	var out []*domain.Conversation
	for _, c := range s.convs {
		if !c.IsOwnedBy(studentID) {
			continue
		}
		switch c.Status() {
		case domain.StatusActive:
		case domain.StatusArchived:
			if !includeArchived {
				continue
			}
		default:
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID().String() > b.ID().String()
	})
	return out
}

func (s *MemoryStore) StudentConversations(_ context.Context, studentID uuid.UUID, limit, offset int, includeArchived bool) ([]domain.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.listed(studentID, includeArchived)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return []domain.ConversationSummary{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]domain.ConversationSummary, 0, end-offset)
	for _, c := range all[offset:end] {
		out = append(out, c.Summarize())
	}
	return out, nil
}

func (s *MemoryStore) ConversationStats(_ context.Context, studentID uuid.UUID, includeArchived bool) (int64, *time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.listed(studentID, includeArchived)
	if len(all) == 0 {
		return 0, nil, nil
	}
	latest := all[0].LastActivityAt()
	for _, c := range all[1:] {
		if c.LastActivityAt().After(latest) {
			latest = c.LastActivityAt()
		}
	}
	return int64(len(all)), &latest, nil
}

package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ---------- fake repository ----------

type fakeRepo struct {
	mu      sync.Mutex
	convs   map[uuid.UUID]*domain.Conversation
	saves   int
	saveErr error
	findErr error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{convs: map[uuid.UUID]*domain.Conversation{}} }

func (r *fakeRepo) Save(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.convs[c.ID()] = c.Clone()
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (r *fakeRepo) Remove(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[id]; !ok {
		return domain.ConversationNotFound(id)
	}
	delete(r.convs, id)
	return nil
}

func (r *fakeRepo) StudentConversations(_ context.Context, studentID uuid.UUID, limit, offset int, includeArchived bool) ([]domain.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ConversationSummary
	for _, c := range r.convs {
		if !c.IsOwnedBy(studentID) || c.Status().IsDeleted() || (c.Status().IsArchived() && !includeArchived) {
			continue
		}
		out = append(out, c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// stored returns the persisted copy of id, or nil.
func (r *fakeRepo) stored(id uuid.UUID) *domain.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.convs[id]; ok {
		return c.Clone()
	}
	return nil
}

// ---------- fake generator ----------

type generatorCall struct {
	history []domain.ChatMessage
	profile domain.TeacherProfile
	native  domain.Language
	target  domain.Language
}

type fakeGenerator struct {
	reply string
	err   error
	calls []generatorCall
}

func (g *fakeGenerator) TeacherResponse(_ context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (string, error) {
	g.calls = append(g.calls, generatorCall{history: history, profile: profile, native: native, target: target})
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// ---------- clock & ids ----------

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), step: time.Second}
}

func seqIDs() (IDGenerator, *[]uuid.UUID) {
	var issued []uuid.UUID
	return func() uuid.UUID {
		id := uuid.New()
		issued = append(issued, id)
		return id
	}, &issued
}

// seedConversation stores an active en->fr conversation owned by student.
func seedConversation(t *testing.T, repo *fakeRepo, student uuid.UUID, created time.Time, prior ...string) *domain.Conversation {
	t.Helper()
	c, err := domain.NewConversation(uuid.New(), student, "Practice", domain.MustLanguage("en"), domain.MustLanguage("fr"), created)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i, content := range prior {
		role := domain.RoleStudent
		if i%2 == 1 {
			role = domain.RoleTeacher
		}
		if _, err := c.AddMessage(uuid.New(), created.Add(time.Duration(i+1)*time.Second), role, content); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	repo.saves = 0
	return c
}

// Package domain holds the tutoring kernel: value objects, the ChatMessage
// entity and the Conversation aggregate, the read model returned to list
// queries, and the error taxonomy shared by every layer.
//
// Nothing here performs I/O or reads a clock. Timestamps and identifiers are
// supplied by the caller, which keeps every operation deterministic.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest accepted title, counted in code points after
// trimming.
const MaxTitleLength = 100

// Conversation is the aggregate root of a tutoring session. It owns its
// messages exclusively; they are appended only through AddMessage.
type Conversation struct {
	id             uuid.UUID
	studentID      uuid.UUID
	title          string
	nativeLang     Language
	targetLang     Language
	status         Status
	messages       []ChatMessage
	createdAt      time.Time
	lastActivityAt time.Time
}

// NewConversation starts an active, empty conversation. The language pair is
// checked only here since no operation changes it later.
func NewConversation(id, studentID uuid.UUID, title string, native, target Language, now time.Time) (*Conversation, error) {
	if native.IsZero() || target.IsZero() || native == target {
		return nil, fmt.Errorf("%w: native %q, target %q", ErrInvalidLanguagePair, native.Code(), target.Code())
	}
	t, err := normalizeTitle(id, title)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		id:             id,
		studentID:      studentID,
		title:          t,
		nativeLang:     native,
		targetLang:     target,
		status:         StatusActive,
		createdAt:      now,
		lastActivityAt: now,
	}, nil
}

func normalizeTitle(id uuid.UUID, title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", fmt.Errorf("%w: conversation %s", ErrEmptyTitle, id)
	}
	if n := utf8.RuneCountInString(t); n > MaxTitleLength {
		return "", fmt.Errorf("%w: conversation %s has %d chars, max %d", ErrTitleTooLong, id, n, MaxTitleLength)
	}
	return t, nil
}

func (c *Conversation) ensureWritable() error {
	if !c.status.IsWritable() {
		return &NotWritableError{ConversationID: c.id, Status: c.status}
	}
	return nil
}

// AddMessage appends a message authored by role and returns a copy of it.
// Each party of an exchange needs its own call.
func (c *Conversation) AddMessage(id uuid.UUID, now time.Time, role Role, content string) (ChatMessage, error) {
	if err := c.ensureWritable(); err != nil {
		return ChatMessage{}, err
	}
	m, err := NewChatMessage(id, role, content, now)
	if err != nil {
		return ChatMessage{}, err
	}
	c.messages = append(c.messages, *m)
	c.Touch(now)
	return *m, nil
}

// ModifyTitle renames an active conversation under the creation rules.
func (c *Conversation) ModifyTitle(title string, now time.Time) error {
	if err := c.ensureWritable(); err != nil {
		return err
	}
	t, err := normalizeTitle(c.id, title)
	if err != nil {
		return err
	}
	c.title = t
	c.Touch(now)
	return nil
}

// Archive moves the conversation to StatusArchived. Re-archiving only
// refreshes the activity timestamp.
func (c *Conversation) Archive(now time.Time) {
	c.status = StatusArchived
	c.Touch(now)
}

// Delete soft-deletes the conversation.
func (c *Conversation) Delete(now time.Time) {
	c.status = StatusDeleted
	c.Touch(now)
}

// Touch sets the last activity timestamp to now.
func (c *Conversation) Touch(now time.Time) { c.lastActivityAt = now }

func (c *Conversation) ID() uuid.UUID             { return c.id }
func (c *Conversation) StudentID() uuid.UUID      { return c.studentID }
func (c *Conversation) Title() string             { return c.title }
func (c *Conversation) NativeLang() Language      { return c.nativeLang }
func (c *Conversation) TargetLang() Language      { return c.targetLang }
func (c *Conversation) Status() Status            { return c.status }
func (c *Conversation) CreatedAt() time.Time      { return c.createdAt }
func (c *Conversation) LastActivityAt() time.Time { return c.lastActivityAt }
func (c *Conversation) MessageCount() int         { return len(c.messages) }

// IsOwnedBy reports whether studentID owns the conversation.
func (c *Conversation) IsOwnedBy(studentID uuid.UUID) bool { return c.studentID == studentID }

// Messages returns the history in insertion order. The slice is a copy;
// editing it leaves the aggregate untouched.
func (c *Conversation) Messages() []ChatMessage {
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (ChatMessage, bool) {
	if len(c.messages) == 0 {
		return ChatMessage{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Clone returns a deep copy that shares no state with c.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.messages = c.Messages()
	return &cp
}

// ConversationSnapshot is the flat form of a Conversation used by storage
// adapters.
type ConversationSnapshot struct {
	ID             uuid.UUID
	StudentID      uuid.UUID
	Title          string
	NativeLang     Language
	TargetLang     Language
	Status         Status
	CreatedAt      time.Time
	LastActivityAt time.Time
	Messages       []ChatMessage
}

// Snapshot flattens the aggregate.
func (c *Conversation) Snapshot() ConversationSnapshot {
	return ConversationSnapshot{
		ID:             c.id,
		StudentID:      c.studentID,
		Title:          c.title,
		NativeLang:     c.nativeLang,
		TargetLang:     c.targetLang,
		Status:         c.status,
		CreatedAt:      c.createdAt,
		LastActivityAt: c.lastActivityAt,
		Messages:       c.Messages(),
	}
}

// RestoreConversation rebuilds an aggregate from storage, re-checking the
// invariants a healthy row always satisfies.
func RestoreConversation(s ConversationSnapshot) (*Conversation, error) {
	if !s.Status.Valid() {
		return nil, fmt.Errorf("%w: conversation %s has status %q", ErrInvalidStatus, s.ID, string(s.Status))
	}
	c, err := NewConversation(s.ID, s.StudentID, s.Title, s.NativeLang, s.TargetLang, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.status = s.Status
	c.lastActivityAt = s.LastActivityAt
	c.messages = make([]ChatMessage, len(s.Messages))
	copy(c.messages, s.Messages)
	return c, nil
}

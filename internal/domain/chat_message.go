package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single utterance in a conversation. Its role never
// changes; its content may be edited but never becomes blank.
type ChatMessage struct {
	id        uuid.UUID
	role      Role
	content   string
	createdAt time.Time
}

// NewChatMessage stamps a new message with id and now.
func NewChatMessage(id uuid.UUID, role Role, content string, now time.Time) (*ChatMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
	}
	if err := validateContent(id, role, content); err != nil {
		return nil, err
	}
	return &ChatMessage{id: id, role: role, content: content, createdAt: now}, nil
}

// RestoreChatMessage rebuilds a stored message. It applies the same checks
// as NewChatMessage so corrupt rows surface as validation errors.
func RestoreChatMessage(id uuid.UUID, role Role, content string, createdAt time.Time) (*ChatMessage, error) {
	return NewChatMessage(id, role, content, createdAt)
}

func validateContent(id uuid.UUID, role Role, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message %s with role %s", ErrEmptyContent, id, role)
	}
	return nil
}

// EditContent replaces the content in place.
func (m *ChatMessage) EditContent(content string) error {
	if err := validateContent(m.id, m.role, content); err != nil {
		return err
	}
	m.content = content
	return nil
}

func (m ChatMessage) ID() uuid.UUID        { return m.id }
func (m ChatMessage) Role() Role           { return m.role }
func (m ChatMessage) Content() string      { return m.content }
func (m ChatMessage) CreatedAt() time.Time { return m.createdAt }

func (m ChatMessage) IsFromStudent() bool { return m.role.IsStudent() }
func (m ChatMessage) IsFromTeacher() bool { return m.role.IsTeacher() }

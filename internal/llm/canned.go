package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Generator is what services.ResponseGenerator asks of a teacher.
type Generator interface {
	TeacherResponse(ctx context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (string, error)
}

// CannedTeacher answers without a model. Replies depend only on the input,
// which makes it suitable for demos and end-to-end tests.
type CannedTeacher struct{}

func NewCannedTeacher() CannedTeacher { return CannedTeacher{} }

func (CannedTeacher) TeacherResponse(ctx context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify(err)
	}
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsFromStudent() {
			last = strings.TrimSpace(history[i].Content())
			break
		}
	}
	if last == "" {
		return fmt.Sprintf("Let's practice %s! Tell me about your day.", target.DisplayName()), nil
	}
	return fmt.Sprintf("[%s, %s] You said: %q. Now try to say it again in %s.",
		profile.Style, profile.Creativity, last, target.DisplayName()), nil
}

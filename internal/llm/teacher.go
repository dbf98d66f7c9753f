// Package llm implements the teacher: it turns a conversation history and a
// TeacherProfile into a chat-completion request and maps provider failures
// onto domain.GenerationError.
//
// Requests go through the eino ChatModel abstraction, so any OpenAI-compatible
// backend works. Ollama is the default; see NewOllamaChatModel. CannedTeacher
// answers offline for demos and tests.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ChatModel is the part of eino's BaseChatModel the teacher needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// DefaultTemperature is used when the configured base is out of range.
const DefaultTemperature float32 = 0.7

const maxTemperature float32 = 2.0

// Teacher generates teacher replies with a ChatModel.
type Teacher struct {
	model    ChatModel
	baseTemp float32
}

// NewTeacher wraps m. baseTemp is the temperature of a moderate teacher; it
// falls back to DefaultTemperature outside [0, 2].
func NewTeacher(m ChatModel, baseTemp float32) *Teacher {
	if baseTemp < 0 || baseTemp > maxTemperature {
		baseTemp = DefaultTemperature
	}
	return &Teacher{model: m, baseTemp: baseTemp}
}

// TemperatureFor maps a creativity level to a sampling temperature.
func TemperatureFor(c domain.CreativityLevel, base float32) float32 {
	switch c {
	case domain.CreativityStrict:
		return 0.2
	case domain.CreativityControlled:
		return 0.4
	case domain.CreativityExpressive:
		if t := base + 0.3; t < maxTemperature {
			return t
		}
		return maxTemperature
	default:
		return base
	}
}

// BuildMessages prepends the system prompt and maps roles: student turns
// become user messages, teacher turns assistant messages.
func BuildMessages(history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(BuildSystemPrompt(profile, native, target)))
	for _, m := range history {
		if m.IsFromStudent() {
			msgs = append(msgs, schema.UserMessage(m.Content()))
		} else {
			msgs = append(msgs, schema.AssistantMessage(m.Content(), nil))
		}
	}
	return msgs
}

// TeacherResponse implements services.ResponseGenerator.
func (t *Teacher) TeacherResponse(ctx context.Context, history []domain.ChatMessage, profile domain.TeacherProfile, native, target domain.Language) (string, error) {
	start := time.Now()
	temp := TemperatureFor(profile.Creativity, t.baseTemp)
	log := zerolog.Ctx(ctx).With().
		Str("style", profile.Style.String()).
		Float32("temperature", temp).
		Int("history", len(history)).
		Logger()

	out, err := t.model.Generate(ctx, BuildMessages(history, profile, native, target), model.WithTemperature(temp))
	if err != nil {
		ge := classify(err)
		outcome := outcomeError
		if isTimeout(err) {
			outcome = outcomeTimeout
		}
		observe(start, outcome)
		log.Warn().Err(err).Str("cause", ge.Cause).Msg("teacher generation failed")
		return "", ge
	}

	var text string
	if out != nil {
		text = strings.TrimSpace(out.Content)
	}
	if text == "" {
		observe(start, outcomeEmpty)
		log.Warn().Msg("teacher returned empty content")
		return "", &domain.GenerationError{Cause: CauseEmpty}
	}
	observe(start, outcomeOK)
	log.Debug().Dur("took", time.Since(start)).Int("chars", len(text)).Msg("teacher replied")
	return text, nil
}

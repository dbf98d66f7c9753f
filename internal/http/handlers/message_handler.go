// Message HTTP handlers.
//
// This file exposes the tutoring exchange:
//   - POST /conversations/{id}/messages   (student turn + teacher reply)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// exchange exists for (student, conversation, key), the handler returns the
// recorded reply and sets `Idempotency-Replayed: true`. The teacher is not
// consulted again.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

// HeaderIdempotencyReplayed marks responses served from a stored exchange.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

//
// DTOs
//

// SendMessageRequest is the JSON payload of a student turn.
type SendMessageRequest struct {
	StudentMessage string `json:"student_message" example:"Je voudrais un café, s'il vous plaît."`
	// CreativityLevel accepts strict, controlled, moderate, expressive or 0-3.
	CreativityLevel string `json:"creativity_level,omitempty" example:"moderate"`
	// GenerationStyle accepts practice, explanatory, corrective or conversational.
	GenerationStyle string `json:"generation_style,omitempty" example:"corrective"`
}

// SendMessageResponse carries both ids of the exchange and the reply.
type SendMessageResponse struct {
	TeacherMessageID string `json:"teacher_message_id"`
	StudentMessageID string `json:"student_message_id"`
	TeacherMessage   string `json:"teacher_message" example:"Très bien ! Petite correction : « un café, s'il vous plaît »."`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes student text:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// teacherProfile parses the optional settings, defaulting each blank one.
func teacherProfile(creativity, style string) (domain.TeacherProfile, error) {
	p := domain.DefaultTeacherProfile()
	if strings.TrimSpace(creativity) != "" {
		lvl, err := domain.ParseCreativityLevel(creativity)
		if err != nil {
			return p, err
		}
		p.Creativity = lvl
	}
	if strings.TrimSpace(style) != "" {
		st, err := domain.ParseGenerationStyle(style)
		if err != nil {
			return p, err
		}
		p.Style = st
	}
	return p, nil
}

//
// Handlers
//

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a student message and get the teacher's reply
// @Description Appends the student's message, generates the teacher's reply and stores both atomically.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-Student-ID     header  string  true  "Student ID (UUID)"  format(uuid)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Conversation ID (UUID)"  format(uuid)
// @Param       body             body    handlers.SendMessageRequest  true  "Student turn"
//
// @Success     200  {object}  handlers.SendMessageResponse  "Teacher reply"
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored exchange"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Conversation not writable"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     503  {object}  handlers.ErrorResponse  "Teacher unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /conversations/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	convID, okID := conversationID(c)
	if !okID {
		return
	}
	student, okID := requireStudent(c)
	if !okID {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	content := sanitizeContent(req.StudentMessage)
	if n := utf8.RuneCountInString(content); n > h.maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("student_message too long: max %d characters", h.maxRunes))
		return
	}
	profile, err := teacherProfile(req.CreativityLevel, req.GenerationStyle)
	if err != nil {
		failErr(c, err)
		return
	}

	// Idempotency (replay path).
	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey && h.idem != nil {
		rec, err := h.idem.Lookup(ctx, student.String(), convID.String(), idemKey, h.now())
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		} else if rec != nil {
			c.Header(HeaderIdempotencyReplayed, "true")
			status := rec.Status
			if status == 0 {
				status = http.StatusOK
			}
			ok(c, status, SendMessageResponse{
				TeacherMessageID: rec.TeacherMessageID,
				StudentMessageID: rec.StudentMessageID,
				TeacherMessage:   rec.TeacherMessage,
			})
			return
		}
	}

	res, err := h.send.Execute(ctx, services.SendMessageCommand{
		ConversationID: convID,
		StudentMessage: content,
		Creativity:     profile.Creativity,
		Style:          profile.Style,
		StudentID:      student,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	resp := SendMessageResponse{
		TeacherMessageID: res.TeacherMessageID.String(),
		StudentMessageID: res.StudentMessageID.String(),
		TeacherMessage:   res.TeacherMessage,
	}

	// Idempotency (store path), best effort.
	if hasKey && h.idem != nil {
		err := h.idem.Remember(ctx, domain.Idempotency{
			StudentID:        student.String(),
			ConversationID:   convID.String(),
			Key:              idemKey,
			TeacherMessageID: resp.TeacherMessageID,
			StudentMessageID: resp.StudentMessageID,
			TeacherMessage:   resp.TeacherMessage,
			Status:           http.StatusOK,
		}, h.idemTTL)
		if err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusOK, resp)
}

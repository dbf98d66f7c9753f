// Conversation HTTP handlers.
//
// This file exposes REST endpoints for conversation resources:
//   - POST   /conversations               (create)
//   - GET    /conversations               (list, paginated, ETag support)
//   - GET    /conversations/{id}          (select, with full history)
//   - DELETE /conversations/{id}          (soft delete)
//   - PUT    /conversations/{id}/title    (rename)
//   - POST   /conversations/{id}/archive  (archive)
//
// Handlers are transport-thin: they resolve the student, validate the shape
// of the input, call one use case, and translate the result (or the domain
// error kind) into an HTTP response.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/services"
	"github.com/tbourn/go-tutor-backend/internal/sysutil"
	"github.com/tbourn/go-tutor-backend/internal/utils"
)

//
// Use case contracts
//

type ConversationCreator interface {
	Execute(ctx context.Context, cmd services.CreateConversationCommand) (services.CreateConversationResult, error)
}

type ConversationLister interface {
	Execute(ctx context.Context, q services.ListStudentConversationsQuery) (services.ListStudentConversationsResult, error)
}

type ConversationSelector interface {
	Execute(ctx context.Context, q services.SelectConversationQuery) (services.SelectConversationResult, error)
}

type ConversationDeleter interface {
	Execute(ctx context.Context, cmd services.DeleteConversationCommand) error
}

type ConversationRenamer interface {
	Execute(ctx context.Context, cmd services.RenameConversationCommand) error
}

type ConversationArchiver interface {
	Execute(ctx context.Context, cmd services.ArchiveConversationCommand) error
}

type MessageSender interface {
	Execute(ctx context.Context, cmd services.SendMessageCommand) (services.SendMessageResult, error)
}

// StatsSource answers the cheap aggregate used to build list ETags.
type StatsSource interface {
	ConversationStats(ctx context.Context, studentID uuid.UUID, includeArchived bool) (int64, *time.Time, error)
}

//
// Handler wiring
//

// Deps lists what the handlers need. Stats and Idempotency are optional:
// without them list ETags and Idempotency-Key replays are disabled.
type Deps struct {
	Create  ConversationCreator
	List    ConversationLister
	Select  ConversationSelector
	Delete  ConversationDeleter
	Rename  ConversationRenamer
	Archive ConversationArchiver
	Send    MessageSender

	Stats          StatsSource
	Idempotency    repo.IdempotencyStore
	IdempotencyTTL time.Duration
	// MaxMessageRunes caps a student message after sanitizing; <= 0 means 4000.
	MaxMessageRunes int
}

// Handlers groups the HTTP endpoints of the tutoring API.
type Handlers struct {
	create  ConversationCreator
	list    ConversationLister
	sel     ConversationSelector
	del     ConversationDeleter
	rename  ConversationRenamer
	archive ConversationArchiver
	send    MessageSender

	stats    StatsSource
	idem     repo.IdempotencyStore
	idemTTL  time.Duration
	maxRunes int
	now      func() time.Time
}

// New constructs the handlers from d.
func New(d Deps) *Handlers {
	ttl := d.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	maxRunes := d.MaxMessageRunes
	if maxRunes <= 0 {
		maxRunes = 4000
	}
	return &Handlers{
		create:   d.Create,
		list:     d.List,
		sel:      d.Select,
		del:      d.Delete,
		rename:   d.Rename,
		archive:  d.Archive,
		send:     d.Send,
		stats:    d.Stats,
		idem:     d.Idempotency,
		idemTTL:  ttl,
		maxRunes: maxRunes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// requireStudent resolves the caller or aborts with 400.
func requireStudent(c *gin.Context) (uuid.UUID, bool) {
	if id, ok := middleware.ResolveStudentID(c); ok {
		return id, true
	}
	fail(c, http.StatusBadRequest, ErrCodeValidation, "student id required: send a UUID in the "+middleware.HeaderStudentID+" header")
	return uuid.Nil, false
}

// conversationID parses the :id path parameter or aborts with 400.
func conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

//
// DTOs
//

// CreateConversationRequest is the JSON payload for opening a conversation.
type CreateConversationRequest struct {
	// StudentID is used only when the request carries no X-Student-ID.
	StudentID string `json:"student_id,omitempty" example:"9a1c2b3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d"`
	// Title defaults to "<target language> practice" when blank.
	Title      string `json:"title" example:"Ordering at a café"`
	NativeLang string `json:"native_lang" example:"en"`
	TargetLang string `json:"target_lang" example:"fr"`
}

// RenameConversationRequest is the JSON payload for renaming a conversation.
type RenameConversationRequest struct {
	Title string `json:"title" example:"Travel vocabulary"`
}

// ConversationSummaryResponse is one entry of a conversation list.
type ConversationSummaryResponse struct {
	ID             string    `json:"id" example:"6f1c2a4e-0d3b-4b8e-9a51-2c7d8e9f0a1b"`
	Title          string    `json:"title" example:"French practice"`
	Status         string    `json:"status" example:"active"`
	NativeLang     string    `json:"native_lang" example:"en"`
	TargetLang     string    `json:"target_lang" example:"fr"`
	MessageCount   int       `json:"message_count" example:"4"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Page size bounds of GET /conversations. A missing limit means
// DefaultPageSize; values outside [1, MaxPageSize] are rejected.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListConversationsResponse wraps a window of summaries.
type ListConversationsResponse struct {
	Conversations []ConversationSummaryResponse `json:"conversations"`
	Limit         int                           `json:"limit" example:"20"`
	Offset        int                           `json:"offset" example:"0"`
}

// MessageResponse is one message of a conversation history.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role" example:"student"`
	Content   string    `json:"content" example:"Bonjour !"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationResponse is a conversation with its full history.
type ConversationResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Status         string            `json:"status"`
	NativeLang     string            `json:"native_lang"`
	TargetLang     string            `json:"target_lang"`
	CreatedAt      time.Time         `json:"created_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	Messages       []MessageResponse `json:"messages"`
}

func summaryResponse(s domain.ConversationSummary) ConversationSummaryResponse {
	return ConversationSummaryResponse{
		ID:             s.ID.String(),
		Title:          s.Title,
		Status:         s.Status.String(),
		NativeLang:     s.NativeLang,
		TargetLang:     s.TargetLang,
		MessageCount:   s.MessageCount,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
	}
}

// defaultTitle names an untitled conversation after its target language.
// An unknown code is left for the use case to reject.
func defaultTitle(title, target string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if lang, err := domain.NewLanguage(target); err == nil {
		return lang.DisplayName() + " practice"
	}
	return title
}

//
// Handlers
//

// CreateConversation godoc
// @ID          createConversation
// @Summary     Open a conversation
// @Description Starts an active, empty conversation for the student in the given language pair.
// @Tags        Conversations
// @Accept      json
// @Produce     json
//
// @Param       X-Student-ID  header  string  false "Student ID (UUID)"  format(uuid)
// @Param       body          body    handlers.CreateConversationRequest  true  "Create payload"
//
// @Success     201  {object}  handlers.ConversationSummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /conversations [post]
func (h *Handlers) CreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	student, resolved := middleware.ResolveStudentID(c)
	if body := strings.TrimSpace(req.StudentID); body != "" {
		id, err := uuid.Parse(body)
		switch {
		case err != nil:
			fail(c, http.StatusBadRequest, ErrCodeValidation, "student_id must be a UUID")
			return
		case resolved && id != student:
			fail(c, http.StatusBadRequest, ErrCodeValidation, "student_id does not match "+middleware.HeaderStudentID)
			return
		}
		student, resolved = id, true
	}
	if !resolved {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "student id required: send a UUID in the "+middleware.HeaderStudentID+" header")
		return
	}

	res, err := h.create.Execute(c.Request.Context(), services.CreateConversationCommand{
		StudentID:  student,
		Title:      defaultTitle(req.Title, req.TargetLang),
		NativeLang: req.NativeLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	created(c, res.ConversationID.String(), summaryResponse(res.Summary))
}

// ListConversations godoc
// @ID          listConversations
// @Summary     List the student's conversations
// @Description Returns a window of summaries, newest first. Deleted conversations are never listed.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-Student-ID      header  string  true  "Student ID (UUID)"          format(uuid)
// @Param       If-None-Match     header  string  false "Return 304 if ETag matches"
// @Param       limit             query   int     false "Page size"                  minimum(1) maximum(100) default(20)
// @Param       offset            query   int     false "Items to skip"              minimum(0) default(0)
// @Param       include_archived  query   bool    false "Also list archived ones"    default(false)
//
// @Success     200  {object} handlers.ListConversationsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Invalid input"
// @Failure     500  {object} handlers.ErrorResponse "Storage failure"
// @Router      /conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	student, okID := requireStudent(c)
	if !okID {
		return
	}
	ctx := c.Request.Context()
	limit, offset, err := utils.ParseWindow(c.Query("limit"), c.Query("offset"), DefaultPageSize, MaxPageSize)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	archived := sysutil.IsTruthy(c.Query("include_archived"))

	// ETag pre-check (best effort).
	if h.stats != nil {
		if count, latest, err := h.stats.ConversationStats(ctx, student, archived); err == nil {
			var ts int64
			if latest != nil {
				ts = latest.UnixNano()
			}
			etag := utils.WeakETag("conversations", student, archived, limit, offset, count, ts)
			c.Header("ETag", etag)
			if utils.ETagMatches(c.GetHeader("If-None-Match"), etag) {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	res, err := h.list.Execute(ctx, services.ListStudentConversationsQuery{
		StudentID:       student,
		Limit:           limit,
		Offset:          offset,
		IncludeArchived: archived,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	items := make([]ConversationSummaryResponse, 0, len(res.Conversations))
	for _, s := range res.Conversations {
		items = append(items, summaryResponse(s))
	}
	ok(c, http.StatusOK, ListConversationsResponse{Conversations: items, Limit: res.Limit, Offset: res.Offset})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Select a conversation
// @Description Returns the conversation with its whole history. Foreign conversations are reported as not found.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-Student-ID  header  string  true  "Student ID (UUID)"       format(uuid)
// @Param       id            path    string  true  "Conversation ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.ConversationResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     500  {object} handlers.ErrorResponse "Storage failure"
// @Router      /conversations/{id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	id, okID := conversationID(c)
	if !okID {
		return
	}
	student, okID := requireStudent(c)
	if !okID {
		return
	}

	res, err := h.sel.Execute(c.Request.Context(), services.SelectConversationQuery{ConversationID: id, StudentID: student})
	if err != nil {
		failErr(c, err)
		return
	}

	msgs := make([]MessageResponse, 0, len(res.Messages))
	for _, m := range res.Messages {
		msgs = append(msgs, MessageResponse{ID: m.ID.String(), Role: m.Role.String(), Content: m.Content, CreatedAt: m.CreatedAt})
	}
	ok(c, http.StatusOK, ConversationResponse{
		ID:             res.ConversationID.String(),
		Title:          res.Title,
		Status:         res.Status.String(),
		NativeLang:     res.NativeLang,
		TargetLang:     res.TargetLang,
		CreatedAt:      res.CreatedAt,
		LastActivityAt: res.LastActivityAt,
		Messages:       msgs,
	})
}

// DeleteConversation godoc
// @ID          deleteConversation
// @Summary     Delete a conversation
// @Description Soft-deletes the conversation. Foreign conversations are reported as not found.
// @Tags        Conversations
//
// @Param       X-Student-ID  header  string  true  "Student ID (UUID)"       format(uuid)
// @Param       id            path    string  true  "Conversation ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     500  {object} handlers.ErrorResponse "Storage failure"
// @Router      /conversations/{id} [delete]
func (h *Handlers) DeleteConversation(c *gin.Context) {
	id, okID := conversationID(c)
	if !okID {
		return
	}
	student, okID := requireStudent(c)
	if !okID {
		return
	}
	if err := h.del.Execute(c.Request.Context(), services.DeleteConversationCommand{ConversationID: id, StudentID: student}); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// RenameConversation godoc
// @ID          renameConversation
// @Summary     Rename a conversation
// @Description Updates the title of an active conversation owned by the student.
// @Tags        Conversations
// @Accept      json
//
// @Param       X-Student-ID  header  string  true  "Student ID (UUID)"       format(uuid)
// @Param       id            path    string  true  "Conversation ID (UUID)"  format(uuid)
// @Param       body          body    handlers.RenameConversationRequest  true  "New title"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid title"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     409  {object} handlers.ErrorResponse "Conversation not writable"
// @Failure     500  {object} handlers.ErrorResponse "Storage failure"
// @Router      /conversations/{id}/title [put]
func (h *Handlers) RenameConversation(c *gin.Context) {
	id, okID := conversationID(c)
	if !okID {
		return
	}
	student, okID := requireStudent(c)
	if !okID {
		return
	}
	var req RenameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	err := h.rename.Execute(c.Request.Context(), services.RenameConversationCommand{
		ConversationID: id,
		StudentID:      student,
		Title:          req.Title,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ArchiveConversation godoc
// @ID          archiveConversation
// @Summary     Archive a conversation
// @Description Moves the conversation to archived; it stays readable but no longer accepts messages.
// @Tags        Conversations
//
// @Param       X-Student-ID  header  string  true  "Student ID (UUID)"       format(uuid)
// @Param       id            path    string  true  "Conversation ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     500  {object} handlers.ErrorResponse "Storage failure"
// @Router      /conversations/{id}/archive [post]
func (h *Handlers) ArchiveConversation(c *gin.Context) {
	id, okID := conversationID(c)
	if !okID {
		return
	}
	student, okID := requireStudent(c)
	if !okID {
		return
	}
	if err := h.archive.Execute(c.Request.Context(), services.ArchiveConversationCommand{ConversationID: id, StudentID: student}); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

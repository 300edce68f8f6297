package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

type assistantService interface {
	History(sess session.Session) []models.ChatMessage
	Clear(sess session.Session)
	Ask(ctx context.Context, sess session.Session, form dto.ChatForm) (*dto.ChatExchange, dialog.Snapshot, error)
	RequestContent(ctx context.Context, sess session.Session, form dto.ContentRequestForm) (*dto.ContentJob, dialog.Snapshot, error)
}

// AssistantHandler exposes the AI chat and content generation.
type AssistantHandler struct {
	assistant assistantService
}

// NewAssistantHandler constructs AssistantHandler.
func NewAssistantHandler(assistant assistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// History godoc
// @Summary Chat history of the caller
// @Tags Assistant
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assistant/messages [get]
func (h *AssistantHandler) History(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.assistant.History(sess), nil)
}

// Clear godoc
// @Summary Start a new conversation
// @Tags Assistant
// @Success 204
// @Router /assistant/messages [delete]
func (h *AssistantHandler) Clear(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	h.assistant.Clear(sess)
	response.NoContent(c)
}

// Ask godoc
// @Summary Send a chat turn
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.ChatForm true "Message"
// @Success 200 {object} response.Envelope
// @Router /assistant/messages [post]
func (h *AssistantHandler) Ask(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.ChatForm
	if !bindJSON(c, &form) {
		return
	}
	exchange, snap, err := h.assistant.Ask(c.Request.Context(), sess, form)
	writeMutation(c, http.StatusOK, exchange, snap, err)
}

// RequestContent godoc
// @Summary Queue course material generation
// @Description The result is delivered as a notification.
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.ContentRequestForm true "Request"
// @Success 202 {object} response.Envelope
// @Router /assistant/content [post]
func (h *AssistantHandler) RequestContent(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.ContentRequestForm
	if !bindJSON(c, &form) {
		return
	}
	job, snap, err := h.assistant.RequestContent(c.Request.Context(), sess, form)
	if err != nil {
		response.Error(c, err, dialogMeta(snap))
		return
	}
	response.Accepted(c, job)
}

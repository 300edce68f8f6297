package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

type messageService interface {
	Inbox(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.Message], error)
	Open(ctx context.Context, sess session.Session, id string) (*models.Message, error)
	Send(ctx context.Context, sess session.Session, form dto.SendMessageForm) (*models.Message, dialog.Snapshot, error)
}

// MessageHandler exposes the inbox.
type MessageHandler struct {
	messages messageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages messageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Inbox godoc
// @Summary List received messages
// @Tags Messages
// @Produce json
// @Param q query string false "Search subject, content or sender"
// @Param status query string false "read or unread"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.messages.Inbox(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Open godoc
// @Summary Open a message
// @Description Unread messages addressed to the caller are marked read.
// @Tags Messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{id} [get]
func (h *MessageHandler) Open(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	msg, err := h.messages.Open(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msg, nil)
}

// Send godoc
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageForm true "Message"
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.SendMessageForm
	if !bindJSON(c, &form) {
		return
	}
	msg, snap, err := h.messages.Send(c.Request.Context(), sess, form)
	writeMutation(c, http.StatusCreated, msg, snap, err)
}

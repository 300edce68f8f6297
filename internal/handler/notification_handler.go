package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
	"github.com/noah-isme/lms-portal-gateway/pkg/ticket"
)

type notificationHub interface {
	Recent(userID string) []models.Notification
	Serve(conn *websocket.Conn, userID, scope string)
}

type ticketSigner interface {
	Issue(userID, scope string) (string, time.Time, error)
	Parse(token string) (ticket.Claims, error)
}

// NotificationHandler exposes recent toasts and the push socket.
type NotificationHandler struct {
	hub      notificationHub
	tickets  ticketSigner
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewNotificationHandler constructs NotificationHandler. Socket upgrades are
// accepted from allowedOrigins, or from any origin when the list is empty.
func NewNotificationHandler(hub notificationHub, tickets ticketSigner, allowedOrigins []string, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return &NotificationHandler{
		hub:     hub,
		tickets: tickets,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[strings.TrimRight(r.Header.Get("Origin"), "/")]
				return ok
			},
		},
	}
}

// Recent godoc
// @Summary Latest notifications of the caller
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) Recent(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.hub.Recent(sess.UserID()), nil)
}

// Ticket godoc
// @Summary Issue a socket ticket
// @Description Browsers cannot send an Authorization header on upgrade, so the socket authenticates with a short-lived ticket.
// @Tags Notifications
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /notifications/ticket [post]
func (h *NotificationHandler) Ticket(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	token, expiresAt, err := h.tickets.Issue(sess.UserID(), sess.Scope())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "não foi possível abrir o canal de notificações"))
		return
	}
	response.Created(c, gin.H{"ticket": token, "expiresAt": expiresAt})
}

// Stream godoc
// @Summary Notification socket
// @Tags Notifications
// @Param ticket query string true "Ticket from /notifications/ticket"
// @Success 101
// @Router /notifications/ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	claims, err := h.tickets.Parse(c.Query("ticket"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "ticket inválido ou expirado"))
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return
	}
	h.hub.Serve(conn, claims.UserID, claims.Scope)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/middleware"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, sess session.Session) (*dto.Dashboard, error)
}

type shellService interface {
	Shell(sess session.Session) dto.Shell
}

// DashboardHandler wires the portal home and shell to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	shell   shellService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, shell shellService) *DashboardHandler {
	return &DashboardHandler{service: service, shell: shell}
}

// Dashboard godoc
// @Summary Portal home charts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	dashboard, err := h.service.Get(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.Meta(c)
	meta["partial"] = dashboard.Partial
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, dashboard, nil, meta)
}

// Session godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *DashboardHandler) Session(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, sess, nil)
}

// Shell godoc
// @Summary Portal title and navigation
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shell [get]
func (h *DashboardHandler) Shell(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.shell.Shell(sess), nil)
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/repository"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

type auditLister interface {
	List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler lists the mutation audit trail.
type AuditHandler struct {
	audit auditLister
}

// NewAuditHandler constructs AuditHandler. A nil lister means auditing is off.
func NewAuditHandler(audit auditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary Audit trail
// @Tags Audit
// @Produce json
// @Param userId query string false "Actor"
// @Param resource query string false "Resource"
// @Param outcome query string false "SUCCESS, FAILURE or REJECTED"
// @Param limit query int false "Max rows" default(50)
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	if h.audit == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "auditoria desativada"))
		return
	}
	filter := repository.AuditFilter{
		UserID:   strings.TrimSpace(c.Query("userId")),
		Resource: strings.TrimSpace(c.Query("resource")),
		Outcome:  strings.ToUpper(strings.TrimSpace(c.Query("outcome"))),
		Limit:    50,
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}
	logs, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

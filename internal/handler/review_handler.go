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

type certificationService interface {
	List(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.CertificationRequest], error)
	Approve(ctx context.Context, sess session.Session, id string) error
	Reject(ctx context.Context, sess session.Session, id string, form dto.RejectForm) (dialog.Snapshot, error)
}

type contractService interface {
	List(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.Contract], error)
	Get(ctx context.Context, sess session.Session, id string) (*models.Contract, error)
	Sign(ctx context.Context, sess session.Session, id string) error
}

// CertificationHandler exposes certification request review.
type CertificationHandler struct {
	certifications certificationService
}

// NewCertificationHandler constructs CertificationHandler.
func NewCertificationHandler(certifications certificationService) *CertificationHandler {
	return &CertificationHandler{certifications: certifications}
}

// List godoc
// @Summary List certification requests
// @Tags Certifications
// @Produce json
// @Param q query string false "Search student, partner or course"
// @Param status query string false "Status tab"
// @Success 200 {object} response.Envelope
// @Router /certifications [get]
func (h *CertificationHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.certifications.List(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Approve godoc
// @Summary Approve a certification request
// @Tags Certifications
// @Param id path string true "Request ID"
// @Success 204
// @Router /certifications/{id}/approve [post]
func (h *CertificationHandler) Approve(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.certifications.Approve(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reject godoc
// @Summary Reject a certification request
// @Tags Certifications
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RejectForm true "Feedback"
// @Success 200 {object} response.Envelope
// @Router /certifications/{id}/reject [post]
func (h *CertificationHandler) Reject(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.RejectForm
	if !bindJSON(c, &form) {
		return
	}
	snap, err := h.certifications.Reject(c.Request.Context(), sess, trimmedParam(c, "id"), form)
	writeMutation(c, http.StatusOK, nil, snap, err)
}

// ContractHandler exposes contracts and signing.
type ContractHandler struct {
	contracts contractService
}

// NewContractHandler constructs ContractHandler.
func NewContractHandler(contracts contractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// List godoc
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Param q query string false "Search"
// @Param status query string false "Status tab"
// @Param minValue query number false "Minimum value in reais"
// @Param maxValue query number false "Maximum value in reais"
// @Success 200 {object} response.Envelope
// @Router /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c, service.ContractRanges...)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.contracts.List(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Get godoc
// @Summary Get contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} response.Envelope
// @Router /contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contract, nil)
}

// Sign godoc
// @Summary Sign a pending contract
// @Tags Contracts
// @Param id path string true "Contract ID"
// @Success 204
// @Router /contracts/{id}/sign [post]
func (h *ContractHandler) Sign(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.contracts.Sign(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

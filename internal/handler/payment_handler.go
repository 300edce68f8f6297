package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

type paymentService interface {
	List(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.Payment], error)
	Summary(ctx context.Context, sess session.Session) (*models.PaymentSummary, error)
	Get(ctx context.Context, sess session.Session, id string) (*models.Payment, error)
	MarkPaid(ctx context.Context, sess session.Session, id string) error
	Export(ctx context.Context, sess session.Session, format string, criteria filter.Criteria) (*service.ExportFile, error)
}

// PaymentHandler exposes payments, their summary and report exports.
type PaymentHandler struct {
	payments paymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param q query string false "Search student or course"
// @Param status query string false "pending, paid, overdue or cancelled"
// @Param minAmount query number false "Minimum amount in reais"
// @Param maxAmount query number false "Maximum amount in reais"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c, service.PaymentRanges...)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.payments.List(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Summary godoc
// @Summary Payment totals
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	summary, err := h.payments.Summary(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// MarkPaid godoc
// @Summary Confirm a payment
// @Tags Payments
// @Param id path string true "Payment ID"
// @Success 204
// @Router /payments/{id}/mark-as-paid [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.payments.MarkPaid(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the payment report
// @Description Applies the same filters as the list.
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c, service.PaymentRanges...)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.FormatCSV)))
	file, err := h.payments.Export(c.Request.Context(), sess, format, q.Criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

type paymentServiceMock struct {
	exportFormat   string
	exportCriteria filter.Criteria
	markErr        error
	marked         string
}

func (m *paymentServiceMock) List(context.Context, session.Session, dto.ListQuery) (service.Page[models.Payment], error) {
	return service.Page[models.Payment]{Items: []models.Payment{}}, nil
}

func (m *paymentServiceMock) Summary(context.Context, session.Session) (*models.PaymentSummary, error) {
	return &models.PaymentSummary{TotalReceived: 1500}, nil
}

func (m *paymentServiceMock) Get(context.Context, session.Session, string) (*models.Payment, error) {
	return &models.Payment{ID: "p1"}, nil
}

func (m *paymentServiceMock) MarkPaid(_ context.Context, _ session.Session, id string) error {
	m.marked = id
	return m.markErr
}

func (m *paymentServiceMock) Export(_ context.Context, _ session.Session, format string, criteria filter.Criteria) (*service.ExportFile, error) {
	m.exportFormat = format
	m.exportCriteria = criteria
	if format != service.FormatCSV && format != service.FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "formato não suportado")
	}
	return &service.ExportFile{Filename: "pagamentos.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("Aluno;Curso\n")}, nil
}

func TestPaymentHandlerExportUsesListFilters(t *testing.T) {
	mock := &paymentServiceMock{}
	h := NewPaymentHandler(mock)
	c, w := newGinContext(http.MethodGet, "/payments/export?status=paid&minAmount=100", nil)
	withSession(c, adminSession)

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.FormatCSV, mock.exportFormat)
	assert.Equal(t, "paid", mock.exportCriteria.Status)
	require.NotNil(t, mock.exportCriteria.Ranges["amount"].Min)
	assert.Equal(t, `attachment; filename="pagamentos.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Aluno;Curso\n", w.Body.String())
}

func TestPaymentHandlerExportUnknownFormat(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceMock{})
	c, w := newGinContext(http.MethodGet, "/payments/export?format=XLSX", nil)
	withSession(c, adminSession)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandlerMarkPaid(t *testing.T) {
	mock := &paymentServiceMock{}
	h := NewPaymentHandler(mock)
	c, w := newGinContext(http.MethodPost, "/payments/p1/mark-as-paid", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	withSession(c, adminSession)

	h.MarkPaid(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "p1", mock.marked)
}

func TestPaymentHandlerMarkPaidRejected(t *testing.T) {
	mock := &paymentServiceMock{markErr: appErrors.Clone(appErrors.ErrMutationNotAllowed, "Pagamento já está pago.")}
	h := NewPaymentHandler(mock)
	c, w := newGinContext(http.MethodPost, "/payments/p1/mark-as-paid", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	withSession(c, adminSession)

	h.MarkPaid(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, "MUTATION_NOT_ALLOWED", env.Error.Code)
	assert.Equal(t, "Pagamento já está pago.", env.Error.Message)
}

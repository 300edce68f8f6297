package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/export"
	"github.com/noah-isme/lms-portal-gateway/pkg/money"
)

var paymentSpec = filter.Spec[models.Payment]{
	Search: []func(models.Payment) string{
		func(p models.Payment) string { return p.StudentName },
		func(p models.Payment) string { return p.CourseName },
	},
	Status: func(p models.Payment) string { return string(p.Status) },
	Ranges: map[string]func(models.Payment) float64{
		"amount": func(p models.Payment) float64 { return money.ToReais(p.Amount) },
	},
}

var paymentLabels = filter.Labels{
	Noun: "pagamentos",
	Tab:  func(s string) string { return models.PaymentStatus(s).PluralLabel() },
}

// PaymentRanges are the numeric filters accepted by payment lists.
var PaymentRanges = []string{"amount"}

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Renderer turns a dataset into a file body.
type Renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// PaymentService lists, settles and exports payments.
type PaymentService struct {
	deps Deps
	csv  Renderer
	pdf  Renderer
	now  func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(deps Deps, csv, pdf Renderer) *PaymentService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PaymentService{deps: deps.withDefaults(), csv: csv, pdf: pdf, now: time.Now}
}

func paymentsKey() query.Key { return query.NewKey(pathPayments) }

func paymentScope(sess session.Session) url.Values {
	switch sess.CurrentPortal {
	case models.PortalPartner:
		return queryParams("partnerId", sess.UserID())
	case models.PortalStudent:
		return queryParams("studentId", sess.UserID())
	}
	return nil
}

func (s *PaymentService) fetch(ctx context.Context, sess session.Session) query.Result[[]models.Payment] {
	return fetchCollection[models.Payment](ctx, s.deps, sess, paymentsKey().Scoped(sess.Scope()), pathPayments, paymentScope(sess))
}

// List returns the filtered payments.
func (s *PaymentService) List(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.Payment], error) {
	res := s.fetch(ctx, sess)
	items, err := res.Unpack()
	if err != nil {
		return Page[models.Payment]{}, err
	}
	return buildPage(items, res, paymentSpec, paymentLabels, q), nil
}

// Summary returns totals per status.
func (s *PaymentService) Summary(ctx context.Context, sess session.Session) (*models.PaymentSummary, error) {
	res := query.Fetch(ctx, s.deps.Queries, paymentsKey().With("summary").Scoped(sess.Scope()), func(ctx context.Context) (models.PaymentSummary, error) {
		var out models.PaymentSummary
		err := s.deps.Backend.Get(ctx, sess.Token, pathPayments+"/summary", paymentScope(sess), &out)
		return out, err
	})
	summary, err := res.Unpack()
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Get loads one payment.
func (s *PaymentService) Get(ctx context.Context, sess session.Session, id string) (*models.Payment, error) {
	res := fetchOne[models.Payment](ctx, s.deps, sess, paymentsKey().With(id).Scoped(sess.Scope()), pathPayments+"/"+id)
	payment, err := res.Unpack()
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaid settles a pending or overdue payment by hand. The payment is read
// through the cache first, so a second call after a successful one sees the
// refreshed status and is rejected without reaching the backend.
func (s *PaymentService) MarkPaid(ctx context.Context, sess session.Session, id string) error {
	return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:    "payment.mark_paid",
		LockKey: "payment:" + id,
		Guard: func(ctx context.Context) error {
			payment, err := s.Get(ctx, sess, id)
			if err != nil {
				return err
			}
			if sess.In(models.PortalPartner) && payment.PartnerID != sess.UserID() {
				return appErrors.Clone(appErrors.ErrForbidden, "pagamento de outro parceiro")
			}
			if !payment.Status.Payable() {
				return appErrors.Clone(appErrors.ErrMutationNotAllowed, "Pagamento já está "+strings.ToLower(payment.Status.Label())+".")
			}
			return nil
		},
		Invalidates: []query.Key{paymentsKey(), paymentsKey().With("summary")},
		Success:     mutation.Message{Title: "Pagamento confirmado", Description: "O pagamento foi marcado como pago."},
		Failure:     mutation.Failure{Title: "Erro ao confirmar pagamento", Fallback: "Não foi possível marcar o pagamento como pago."},
		Actor:       sess,
		Resource:    "payment",
		ResourceID:  id,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathPayments+"/"+id+"/mark-as-paid", nil, nil)
	})
}

// Export renders the filtered payments as CSV or PDF with a totals footer.
func (s *PaymentService) Export(ctx context.Context, sess session.Session, format string, criteria filter.Criteria) (*ExportFile, error) {
	renderer, contentType := s.csv, "text/csv; charset=utf-8"
	switch strings.ToLower(format) {
	case "", FormatCSV:
		format = FormatCSV
	case FormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "formato de exportação inválido")
	}

	items, err := s.fetch(ctx, sess).Unpack()
	if err != nil {
		return nil, err
	}
	items = filter.Apply(items, paymentSpec, criteria)

	body, err := renderer.Render(paymentDataset(items))
	if err != nil {
		s.deps.Logger.Error("render payment export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "não foi possível gerar o relatório")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("pagamentos-%s.%s", s.now().Format("20060102-150405"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func paymentDataset(items []models.Payment) export.Dataset {
	headers := []string{"Aluno", "Curso", "Valor", "Status", "Vencimento", "Pago em"}
	rows := make([]map[string]string, 0, len(items))
	var total, paid int64
	for _, p := range items {
		rows = append(rows, map[string]string{
			"Aluno":      p.StudentName,
			"Curso":      p.CourseName,
			"Valor":      money.FormatBRL(p.Amount),
			"Status":     p.Status.Label(),
			"Vencimento": formatDate(p.DueDate),
			"Pago em":    formatDate(p.PaidAt),
		})
		if p.Status == models.PaymentStatusCancelled {
			continue
		}
		total += p.Amount
		if p.Status == models.PaymentStatusPaid {
			paid += p.Amount
		}
	}
	return export.Dataset{
		Title:   "Relatório de pagamentos",
		Headers: headers,
		Rows:    rows,
		Footer: map[string]string{
			"Aluno":  fmt.Sprintf("Total (%d)", len(items)),
			"Valor":  money.FormatBRL(total),
			"Status": "Recebido: " + money.FormatBRL(paid),
		},
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

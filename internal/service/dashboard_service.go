package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/money"
)

// DashboardService assembles the portal home from the other services. A
// section that fails is left out and the dashboard flagged partial.
type DashboardService struct {
	courses        *CourseService
	documents      *DocumentService
	certifications *CertificationService
	payments       *PaymentService
	logger         *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(courses *CourseService, documents *DocumentService, certifications *CertificationService, payments *PaymentService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		courses:        courses,
		documents:      documents,
		certifications: certifications,
		payments:       payments,
		logger:         logger,
	}
}

type section struct {
	name  string
	build func(ctx context.Context, d *dto.Dashboard) error
}

// Get loads every section visible to the caller concurrently.
func (s *DashboardService) Get(ctx context.Context, sess session.Session) (*dto.Dashboard, error) {
	dashboard := &dto.Dashboard{Portal: sess.CurrentPortal, Series: []dto.ChartSeries{}}
	sections := s.sectionsFor(sess)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, sec := range sections {
		sec := sec
		g.Go(func() error {
			var part dto.Dashboard
			if err := sec.build(gctx, &part); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("dashboard section failed", zap.String("section", sec.name), zap.Error(err))
				mu.Lock()
				dashboard.Partial = true
				mu.Unlock()
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if part.Payments != nil {
				dashboard.Payments = part.Payments
			}
			dashboard.Series = append(dashboard.Series, part.Series...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortSeries(dashboard.Series, sections)
	return dashboard, nil
}

func (s *DashboardService) sectionsFor(sess session.Session) []section {
	var out []section
	if sess.In(models.PortalAdmin) {
		out = append(out, section{"courses", func(ctx context.Context, d *dto.Dashboard) error {
			page, err := s.courses.List(ctx, sess, dto.ListQuery{})
			if err != nil {
				return err
			}
			d.Series = append(d.Series, countBy("courses", "Cursos por status", page.Items,
				func(c models.Course) (string, string) { return string(c.Status), c.Status.Label() }))
			return nil
		}})
	}
	if sess.In(models.PortalAdmin, models.PortalStudent) {
		out = append(out, section{"documents", func(ctx context.Context, d *dto.Dashboard) error {
			page, err := s.documents.List(ctx, sess, dto.ListQuery{})
			if err != nil {
				return err
			}
			d.Series = append(d.Series, countBy("documents", "Documentos por status", page.Items,
				func(doc models.StudentDocument) (string, string) { return string(doc.Status), doc.Status.Label() }))
			return nil
		}})
	}
	if sess.In(models.PortalAdmin, models.PortalPartner) {
		out = append(out, section{"certifications", func(ctx context.Context, d *dto.Dashboard) error {
			page, err := s.certifications.List(ctx, sess, dto.ListQuery{})
			if err != nil {
				return err
			}
			d.Series = append(d.Series, countBy("certifications", "Certificações por status", page.Items,
				func(r models.CertificationRequest) (string, string) { return string(r.Status), r.Status.Label() }))
			return nil
		}})
		out = append(out, section{"payments", func(ctx context.Context, d *dto.Dashboard) error {
			summary, err := s.payments.Summary(ctx, sess)
			if err != nil {
				return err
			}
			d.Payments = summary
			d.Series = append(d.Series, dto.ChartSeries{
				Name:  "payments",
				Title: "Pagamentos (R$)",
				Points: []dto.ChartPoint{
					{Key: string(models.PaymentStatusPaid), Label: "Recebido", Value: money.ToReais(summary.TotalReceived)},
					{Key: string(models.PaymentStatusPending), Label: "Pendente", Value: money.ToReais(summary.TotalPending)},
					{Key: string(models.PaymentStatusOverdue), Label: "Atrasado", Value: money.ToReais(summary.TotalOverdue)},
				},
			})
			return nil
		}})
	}
	return out
}

// countBy groups items by key, keeping first-seen order.
func countBy[T any](name, title string, items []T, key func(T) (string, string)) dto.ChartSeries {
	series := dto.ChartSeries{Name: name, Title: title, Points: []dto.ChartPoint{}}
	index := map[string]int{}
	for _, item := range items {
		k, label := key(item)
		i, ok := index[k]
		if !ok {
			i = len(series.Points)
			index[k] = i
			series.Points = append(series.Points, dto.ChartPoint{Key: k, Label: label})
		}
		series.Points[i].Value++
	}
	return series
}

func sortSeries(series []dto.ChartSeries, sections []section) {
	rank := make(map[string]int, len(sections))
	for i, sec := range sections {
		rank[sec.name] = i
	}
	sort.SliceStable(series, func(i, j int) bool { return rank[series[i].Name] < rank[series[j].Name] })
}

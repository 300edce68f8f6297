package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

var certificationSpec = filter.Spec[models.CertificationRequest]{
	Search: []func(models.CertificationRequest) string{
		func(r models.CertificationRequest) string { return r.StudentName },
		func(r models.CertificationRequest) string { return r.PartnerName },
		func(r models.CertificationRequest) string { return r.CourseName },
	},
	Status: func(r models.CertificationRequest) string { return string(r.Status) },
}

var certificationLabels = filter.Labels{
	Noun: "solicitações",
	Tab:  func(s string) string { return models.CertificationStatus(s).PluralLabel() },
}

// CertificationService reviews certification requests raised by partners.
type CertificationService struct {
	deps Deps
}

// NewCertificationService constructs a CertificationService.
func NewCertificationService(deps Deps) *CertificationService {
	return &CertificationService{deps: deps.withDefaults()}
}

func certificationsKey() query.Key { return query.NewKey(pathCertifications) }

func (s *CertificationService) fetch(ctx context.Context, sess session.Session) query.Result[[]models.CertificationRequest] {
	var p url.Values
	if sess.In(models.PortalPartner) {
		p = queryParams("partnerId", sess.UserID())
	}
	return fetchCollection[models.CertificationRequest](ctx, s.deps, sess, certificationsKey().Scoped(sess.Scope()), pathCertifications, p)
}

// List returns the filtered requests.
func (s *CertificationService) List(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.CertificationRequest], error) {
	res := s.fetch(ctx, sess)
	items, err := res.Unpack()
	if err != nil {
		return Page[models.CertificationRequest]{}, err
	}
	return buildPage(items, res, certificationSpec, certificationLabels, q), nil
}

func (s *CertificationService) requireOpen(sess session.Session, id string) func(context.Context) error {
	return func(ctx context.Context) error {
		items, err := s.fetch(ctx, sess).Unpack()
		if err != nil {
			return err
		}
		req, ok := find(items, func(r models.CertificationRequest) string { return r.ID }, id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "solicitação não encontrada")
		}
		if req.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrMutationNotAllowed, "Solicitação já está "+req.Status.Label()+".")
		}
		return nil
	}
}

// Approve grants the certification.
func (s *CertificationService) Approve(ctx context.Context, sess session.Session, id string) error {
	return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:        "certification.approve",
		LockKey:     "certification:" + id,
		Guard:       s.requireOpen(sess, id),
		Invalidates: []query.Key{certificationsKey()},
		Success:     mutation.Message{Title: "Certificação aprovada", Description: "A solicitação foi aprovada."},
		Failure:     mutation.Failure{Title: "Erro ao aprovar certificação", Fallback: "Não foi possível aprovar a solicitação."},
		Actor:       sess,
		Resource:    "certification_request",
		ResourceID:  id,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathCertifications+"/"+id+"/approve", nil, nil)
	})
}

// Reject refuses the request with reviewer feedback.
func (s *CertificationService) Reject(ctx context.Context, sess session.Session, id string, form dto.RejectForm) (dialog.Snapshot, error) {
	return submitForm(ctx, s.deps.Validate, id, form, func(ctx context.Context, entityID string, f dto.RejectForm) error {
		return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
			Name:        "certification.reject",
			LockKey:     "certification:" + entityID,
			Guard:       s.requireOpen(sess, entityID),
			Invalidates: []query.Key{certificationsKey()},
			Success:     mutation.Message{Title: "Certificação rejeitada", Description: "O parceiro será notificado."},
			Failure:     mutation.Failure{Title: "Erro ao rejeitar certificação", Fallback: "Não foi possível rejeitar a solicitação."},
			Actor:       sess,
			Resource:    "certification_request",
			ResourceID:  entityID,
		}, func(ctx context.Context) error {
			return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathCertifications+"/"+entityID+"/reject",
				dto.ReviewPayload{Comments: f.Comments}, nil)
		})
	})
}

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
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

var documentSpec = filter.Spec[models.StudentDocument]{
	Search: []func(models.StudentDocument) string{
		func(d models.StudentDocument) string { return d.Title },
		func(d models.StudentDocument) string { return d.DocumentType },
		func(d models.StudentDocument) string { return d.StudentName },
	},
	Status: func(d models.StudentDocument) string { return string(d.Status) },
}

var documentLabels = filter.Labels{
	Noun: "documentos",
	Tab:  func(s string) string { return models.DocumentStatus(s).PluralLabel() },
}

// DocumentService handles student document review.
type DocumentService struct {
	deps Deps
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(deps Deps) *DocumentService {
	return &DocumentService{deps: deps.withDefaults()}
}

func documentsKey() query.Key { return query.NewKey(pathDocuments) }

func (s *DocumentService) fetch(ctx context.Context, sess session.Session) query.Result[[]models.StudentDocument] {
	var p url.Values
	if sess.In(models.PortalStudent) {
		p = queryParams("studentId", sess.UserID())
	}
	return fetchCollection[models.StudentDocument](ctx, s.deps, sess, documentsKey().Scoped(sess.Scope()), pathDocuments, p)
}

// List returns the documents visible to the caller. Students only see their own.
func (s *DocumentService) List(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.StudentDocument], error) {
	res := s.fetch(ctx, sess)
	items, err := res.Unpack()
	if err != nil {
		return Page[models.StudentDocument]{}, err
	}
	if sess.In(models.PortalStudent) {
		own := items[:0:0]
		for _, d := range items {
			if d.StudentID == sess.UserID() {
				own = append(own, d)
			}
		}
		items = own
	}
	return buildPage(items, res, documentSpec, documentLabels, q), nil
}

func (s *DocumentService) requirePending(sess session.Session, id string) func(context.Context) error {
	return func(ctx context.Context) error {
		items, err := s.fetch(ctx, sess).Unpack()
		if err != nil {
			return err
		}
		doc, ok := find(items, func(d models.StudentDocument) string { return d.ID }, id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "documento não encontrado")
		}
		if doc.Status != models.DocumentStatusPending {
			return appErrors.Clone(appErrors.ErrMutationNotAllowed, "Documento já foi "+reviewedWord(doc.Status)+".")
		}
		return nil
	}
}

func reviewedWord(s models.DocumentStatus) string {
	if s == models.DocumentStatusRejected {
		return "recusado"
	}
	return "aprovado"
}

// Upload sends a new document. A student always uploads for themselves.
func (s *DocumentService) Upload(ctx context.Context, sess session.Session, form dto.UploadDocumentForm, file upstream.FilePart) (*models.StudentDocument, dialog.Snapshot, error) {
	if sess.In(models.PortalStudent) {
		form.StudentID = sess.UserID()
	}
	var uploaded *models.StudentDocument
	snap, err := submitForm(ctx, s.deps.Validate, "", form, func(ctx context.Context, _ string, f dto.UploadDocumentForm) error {
		if file.Reader == nil {
			return appErrors.WithFields("Verifique os campos destacados.", map[string]string{"file": "arquivo obrigatório"})
		}
		doc, err := mutation.Execute(ctx, s.deps.Mutations, mutation.Spec{
			Name:        "document.upload",
			LockKey:     "document-upload:" + f.StudentID + ":" + f.DocumentType,
			Invalidates: []query.Key{documentsKey()},
			Success:     mutation.Message{Title: "Documento enviado", Description: "O documento foi enviado para análise."},
			Failure:     mutation.Failure{Title: "Erro ao enviar documento", Fallback: "Não foi possível enviar o documento."},
			Actor:       sess,
			Resource:    "student_document",
		}, func(ctx context.Context) (models.StudentDocument, error) {
			var out models.StudentDocument
			file.Field = "file"
			err := s.deps.Backend.Upload(ctx, sess.Token, pathDocuments, f.Fields(), file, &out)
			return out, err
		})
		if err != nil {
			return err
		}
		uploaded = &doc
		return nil
	})
	return uploaded, snap, err
}

// Approve accepts a pending document.
func (s *DocumentService) Approve(ctx context.Context, sess session.Session, id string) error {
	return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:        "document.approve",
		LockKey:     "document:" + id,
		Guard:       s.requirePending(sess, id),
		Invalidates: []query.Key{documentsKey()},
		Success:     mutation.Message{Title: "Documento aprovado", Description: "O documento foi aprovado com sucesso."},
		Failure:     mutation.Failure{Title: "Erro ao aprovar documento", Fallback: "Não foi possível aprovar o documento."},
		Actor:       sess,
		Resource:    "student_document",
		ResourceID:  id,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathDocuments+"/"+id+"/approve", nil, nil)
	})
}

// Reject refuses a pending document with reviewer feedback.
func (s *DocumentService) Reject(ctx context.Context, sess session.Session, id string, form dto.RejectForm) (dialog.Snapshot, error) {
	return submitForm(ctx, s.deps.Validate, id, form, func(ctx context.Context, entityID string, f dto.RejectForm) error {
		return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
			Name:        "document.reject",
			LockKey:     "document:" + entityID,
			Guard:       s.requirePending(sess, entityID),
			Invalidates: []query.Key{documentsKey()},
			Success:     mutation.Message{Title: "Documento recusado", Description: "O aluno será notificado."},
			Failure:     mutation.Failure{Title: "Erro ao recusar documento", Fallback: "Não foi possível recusar o documento."},
			Actor:       sess,
			Resource:    "student_document",
			ResourceID:  entityID,
		}, func(ctx context.Context) error {
			return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathDocuments+"/"+entityID+"/reject",
				dto.ReviewPayload{Comments: f.Comments}, nil)
		})
	})
}

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
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

const maxDocumentSize = 10 << 20

type documentService interface {
	List(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.StudentDocument], error)
	Upload(ctx context.Context, sess session.Session, form dto.UploadDocumentForm, file upstream.FilePart) (*models.StudentDocument, dialog.Snapshot, error)
	Approve(ctx context.Context, sess session.Session, id string) error
	Reject(ctx context.Context, sess session.Session, id string, form dto.RejectForm) (dialog.Snapshot, error)
}

// DocumentHandler exposes student document review.
type DocumentHandler struct {
	documents documentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents documentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List student documents
// @Tags Documents
// @Produce json
// @Param q query string false "Search title or document type"
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.documents.List(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Upload godoc
// @Summary Upload a student document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param studentId formData string false "Student ID, forced to the caller for students"
// @Param documentType formData string true "Document type"
// @Param title formData string false "Title"
// @Param comments formData string false "Comments"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.UploadDocumentForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "formulário inválido"))
		return
	}

	var part upstream.FilePart
	if header, err := c.FormFile("file"); err == nil {
		if header.Size > maxDocumentSize {
			response.Error(c, appErrors.WithFields("arquivo muito grande", map[string]string{"file": "tamanho máximo de 10 MB"}))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "não foi possível ler o arquivo"))
			return
		}
		defer file.Close()
		part = upstream.FilePart{Filename: header.Filename, Reader: file}
	}

	doc, snap, err := h.documents.Upload(c.Request.Context(), sess, form, part)
	writeMutation(c, http.StatusCreated, doc, snap, err)
}

// Approve godoc
// @Summary Approve a pending document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id}/approve [post]
func (h *DocumentHandler) Approve(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.documents.Approve(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reject godoc
// @Summary Reject a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.RejectForm true "Rejection comments"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/reject [post]
func (h *DocumentHandler) Reject(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.RejectForm
	if !bindJSON(c, &form) {
		return
	}
	snap, err := h.documents.Reject(c.Request.Context(), sess, trimmedParam(c, "id"), form)
	writeMutation(c, http.StatusOK, nil, snap, err)
}

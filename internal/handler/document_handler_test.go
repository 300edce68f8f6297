package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

type documentServiceMock struct {
	form       dto.UploadDocumentForm
	filename   string
	content    string
	rejectID   string
	rejectForm dto.RejectForm
	rejectErr  error
}

func (m *documentServiceMock) List(context.Context, session.Session, dto.ListQuery) (service.Page[models.StudentDocument], error) {
	return service.Page[models.StudentDocument]{}, nil
}

func (m *documentServiceMock) Upload(_ context.Context, _ session.Session, form dto.UploadDocumentForm, file upstream.FilePart) (*models.StudentDocument, dialog.Snapshot, error) {
	m.form = form
	if file.Reader == nil {
		return nil, dialog.Snapshot{State: dialog.StateOpen, Errors: map[string]string{"file": "arquivo obrigatório"}},
			appErrors.WithFields("Verifique os campos destacados.", map[string]string{"file": "arquivo obrigatório"})
	}
	m.filename = file.Filename
	b, _ := io.ReadAll(file.Reader)
	m.content = string(b)
	return &models.StudentDocument{ID: "d1"}, dialog.Snapshot{State: dialog.StateClosed}, nil
}

func (m *documentServiceMock) Approve(context.Context, session.Session, string) error { return nil }

func (m *documentServiceMock) Reject(_ context.Context, _ session.Session, id string, form dto.RejectForm) (dialog.Snapshot, error) {
	m.rejectID = id
	m.rejectForm = form
	if m.rejectErr != nil {
		return dialog.Snapshot{State: dialog.StateOpen, EntityID: id, Errors: map[string]string{"comments": "mínimo de 10 caracteres"}}, m.rejectErr
	}
	return dialog.Snapshot{State: dialog.StateClosed}, nil
}

func multipartUpload(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("documentType", "rg"))
	require.NoError(t, writer.WriteField("studentId", "student-1"))
	if withFile {
		part, err := writer.CreateFormFile("file", "rg.pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("%PDF"))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestDocumentHandlerUpload(t *testing.T) {
	mock := &documentServiceMock{}
	h := NewDocumentHandler(mock)
	body, contentType := multipartUpload(t, true)
	c, w := newGinContext(http.MethodPost, "/documents", body.Bytes())
	c.Request.Header.Set("Content-Type", contentType)
	withSession(c, studentSession)

	h.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rg", mock.form.DocumentType)
	assert.Equal(t, "student-1", mock.form.StudentID)
	assert.Equal(t, "rg.pdf", mock.filename)
	assert.Equal(t, "%PDF", mock.content)
}

func TestDocumentHandlerUploadWithoutFile(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{})
	body, contentType := multipartUpload(t, false)
	c, w := newGinContext(http.MethodPost, "/documents", body.Bytes())
	c.Request.Header.Set("Content-Type", contentType)
	withSession(c, studentSession)

	h.Upload(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "arquivo obrigatório", env.Error.Fields["file"])
	assert.Equal(t, "open", env.Meta["dialog"].(map[string]interface{})["state"])
}

func TestDocumentHandlerReject(t *testing.T) {
	mock := &documentServiceMock{}
	h := NewDocumentHandler(mock)
	c, w := newGinContext(http.MethodPost, "/documents/d1/reject", mustJSON(t, dto.RejectForm{Comments: "Documento ilegível"}))
	c.Params = gin.Params{{Key: "id", Value: " d1 "}}
	withSession(c, adminSession)

	h.Reject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d1", mock.rejectID)
	assert.Equal(t, "Documento ilegível", mock.rejectForm.Comments)
	assert.Contains(t, string(decode(t, w).Data), `"state":"closed"`)
}

func TestDocumentHandlerRejectKeepsDialogOpen(t *testing.T) {
	mock := &documentServiceMock{rejectErr: appErrors.WithFields("Verifique os campos destacados.", map[string]string{"comments": "mínimo de 10 caracteres"})}
	h := NewDocumentHandler(mock)
	c, w := newGinContext(http.MethodPost, "/documents/d1/reject", mustJSON(t, dto.RejectForm{Comments: "curto"}))
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	withSession(c, adminSession)

	h.Reject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	dialogState := decode(t, w).Meta["dialog"].(map[string]interface{})
	assert.Equal(t, "d1", dialogState["entityId"])
}

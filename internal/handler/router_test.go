package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-portal-gateway/internal/notify"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/ticket"
)

type tokenResolver map[string]session.Session

func (r tokenResolver) Resolve(token string) (session.Session, error) {
	if sess, ok := r[token]; ok {
		return sess, nil
	}
	return session.Session{}, appErrors.ErrUnauthorized
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, RouterConfig{
		Prefix:   "/api/v1",
		Sessions: tokenResolver{"admin-token": adminSession, "student-token": studentSession},
	}, Handlers{
		Courses:        NewCourseHandler(&courseServiceMock{}),
		Documents:      NewDocumentHandler(&documentServiceMock{}),
		Certifications: NewCertificationHandler(nil),
		Contracts:      NewContractHandler(nil),
		Payments:       NewPaymentHandler(&paymentServiceMock{}),
		Messages:       NewMessageHandler(nil),
		Assistant:      NewAssistantHandler(nil),
		Dashboard:      NewDashboardHandler(nil, service.NewShellService(false)),
		Notifications:  NewNotificationHandler(notify.NewHub(config.NotificationsConfig{}, nil), ticket.NewSigner("secret", time.Minute), nil, nil),
		Audit:          NewAuditHandler(nil),
		Metrics:        NewMetricsHandler(nil, nil),
	})
	return r
}

func call(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterRequiresSession(t *testing.T) {
	r := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/session", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/session", "forged").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/session", "student-token").Code)
}

func TestRouterGatesPortals(t *testing.T) {
	r := newTestRouter()

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodDelete, "/api/v1/courses/c1", "student-token").Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/v1/courses/c1", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/payments/p1/mark-as-paid", "student-token").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/audit-logs", "student-token").Code)
}

func TestRouterStaticRoutesWinOverIDs(t *testing.T) {
	r := newTestRouter()

	w := call(r, http.MethodGet, "/api/v1/payments/summary", "admin-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalReceived":1500`)
}

func TestRouterSocketSkipsSessionGate(t *testing.T) {
	r := newTestRouter()

	w := call(r, http.MethodGet, "/api/v1/notifications/ws?ticket=bad", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ticket inválido")
}

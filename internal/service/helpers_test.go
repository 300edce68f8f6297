package service

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

type backendCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Fields map[string]string
	File   string
}

type routeHandler func(c backendCall) (interface{}, error)

type fakeBackend struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]routeHandler
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{routes: map[string]routeHandler{}}
}

func (f *fakeBackend) on(method, path string, h routeHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeBackend) last(method, path string) (backendCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method && f.calls[i].Path == path {
			return f.calls[i], true
		}
	}
	return backendCall{}, false
}

func (f *fakeBackend) handle(c backendCall, dest interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h, ok := f.routes[c.Method+" "+c.Path]
	f.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "rota não encontrada")
	}
	value, err := h(c)
	if err != nil {
		return err
	}
	if dest == nil || value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeBackend) Get(_ context.Context, _ string, path string, q url.Values, dest interface{}) error {
	return f.handle(backendCall{Method: "GET", Path: path, Query: q}, dest)
}

func (f *fakeBackend) Send(_ context.Context, _ string, method, path string, body, dest interface{}) error {
	return f.handle(backendCall{Method: method, Path: path, Body: body}, dest)
}

func (f *fakeBackend) Upload(_ context.Context, _ string, path string, fields map[string]string, file upstream.FilePart, dest interface{}) error {
	raw, _ := io.ReadAll(file.Reader)
	return f.handle(backendCall{Method: "POST", Path: path, Fields: fields, File: file.Field + ":" + string(raw)}, dest)
}

func respond(v interface{}) routeHandler {
	return func(backendCall) (interface{}, error) { return v, nil }
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.notes...)
}

func (r *recordingNotifier) lastNote() (models.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return models.Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

type testEnv struct {
	backend  *fakeBackend
	notifier *recordingNotifier
	deps     Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend()
	notifier := &recordingNotifier{}
	queries := query.NewClient(query.Config{StaleTime: time.Minute, FetchTimeout: 5 * time.Second}, zap.NewNop())
	exec := mutation.NewExecutor(queries, zap.NewNop(), mutation.WithNotifier(notifier))
	return &testEnv{
		backend:  backend,
		notifier: notifier,
		deps:     Deps{Backend: backend, Queries: queries, Mutations: exec, Logger: zap.NewNop()},
	}
}

func sessionFor(portal models.Portal, userID string) session.Session {
	return session.Session{
		CurrentUser:   models.UserInfo{ID: userID, FullName: "Usuário " + userID},
		CurrentPortal: portal,
		Token:         "token-" + userID,
	}
}

var (
	adminSession   = sessionFor(models.PortalAdmin, "admin-1")
	partnerSession = sessionFor(models.PortalPartner, "partner-1")
	studentSession = sessionFor(models.PortalStudent, "student-1")
)

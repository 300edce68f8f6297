package service

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

// Backend paths.
const (
	pathCourses        = "/api/courses"
	pathDocuments      = "/api/student-documents"
	pathCertifications = "/api/certification-requests"
	pathContracts      = "/api/contracts"
	pathPayments       = "/api/payments"
	pathMessages       = "/api/messages"
)

// Backend is the LMS REST API. *upstream.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, token, path string, query url.Values, dest interface{}) error
	Send(ctx context.Context, token, method, path string, body, dest interface{}) error
	Upload(ctx context.Context, token, path string, fields map[string]string, file upstream.FilePart, dest interface{}) error
}

// Deps bundles the collaborators shared by every domain service.
type Deps struct {
	Backend   Backend
	Queries   *query.Client
	Mutations *mutation.Executor
	Validate  *validator.Validate
	Logger    *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Validate == nil {
		d.Validate = dialog.NewValidator()
	}
	if d.Queries == nil {
		d.Queries = query.NewClient(query.Config{}, d.Logger)
	}
	if d.Mutations == nil {
		d.Mutations = mutation.NewExecutor(d.Queries, d.Logger)
	}
	return d
}

// Page is one screen of a filtered list.
type Page[T any] struct {
	Items      []T                `json:"items"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	EmptyState *filter.EmptyState `json:"emptyState,omitempty"`
	FromCache  bool               `json:"fromCache"`
	Stale      bool               `json:"stale"`
}

// fetchCollection reads path through the query cache under key.
func fetchCollection[T any](ctx context.Context, d Deps, sess session.Session, key query.Key, path string, params url.Values) query.Result[[]T] {
	return query.Fetch(ctx, d.Queries, key, func(ctx context.Context) ([]T, error) {
		var out []T
		if err := d.Backend.Get(ctx, sess.Token, path, params, &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	})
}

// fetchOne reads a single entity through the query cache under key.
func fetchOne[T any](ctx context.Context, d Deps, sess session.Session, key query.Key, path string) query.Result[T] {
	return query.Fetch(ctx, d.Queries, key, func(ctx context.Context) (T, error) {
		var out T
		err := d.Backend.Get(ctx, sess.Token, path, nil, &out)
		return out, err
	})
}

// buildPage filters and paginates a fetched collection. items may already be
// narrowed by portal visibility rules.
func buildPage[T any](items []T, res query.Result[[]T], spec filter.Spec[T], labels filter.Labels, q dto.ListQuery) Page[T] {
	visible, empty := filter.Run(items, spec, q.Criteria, labels)
	page := Page[T]{
		EmptyState: empty,
		FromCache:  res.FromCache,
		Stale:      res.Stale,
	}
	pageNo, size := q.Page, q.PageSize
	if pageNo < 1 {
		pageNo = 1
	}
	if size <= 0 {
		pageNo, size = 1, len(visible)
	}
	page.Items = filter.Paginate(visible, pageNo, q.PageSize)
	page.Pagination = &models.Pagination{Page: pageNo, PageSize: size, TotalCount: len(visible)}
	return page
}

// submitForm opens a dialog for entityID (empty for a new entity), submits
// values through fn and reports the final dialog state.
func submitForm[F any](ctx context.Context, validate *validator.Validate, entityID string, values F, fn dialog.SubmitFunc[F]) (dialog.Snapshot, error) {
	ctrl := dialog.New[F](validate)
	ctrl.Open(entityID, values)
	err := ctrl.Submit(ctx, fn)
	return ctrl.Snapshot(), err
}

// find returns the first item whose id matches.
func find[T any](items []T, id func(T) string, want string) (T, bool) {
	for _, item := range items {
		if id(item) == want {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func queryParams(kv ...string) url.Values {
	out := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out.Set(kv[i], kv[i+1])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

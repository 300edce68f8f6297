package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/middleware"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// sessionFromContext writes a 401 and returns false when the route was not
// gated by the session middleware.
func sessionFromContext(c *gin.Context) (session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return session.Session{}, false
	}
	return sess, true
}

// listQuery parses q, status, the min/max bounds of ranges and paging. A
// pageSize of 0 asks for every row.
func listQuery(c *gin.Context, ranges ...string) (dto.ListQuery, error) {
	criteria, err := filter.FromQuery(c.Request.URL.Query(), ranges...)
	if err != nil {
		return dto.ListQuery{}, err
	}
	q := dto.ListQuery{Criteria: criteria, Page: 1, PageSize: defaultPageSize}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		q.Page = page
	}
	size := c.Query("pageSize")
	if size == "" {
		size = c.Query("limit")
	}
	if size != "" {
		if n, err := strconv.Atoi(size); err == nil && n >= 0 {
			q.PageSize = n
		}
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q, nil
}

// writePage renders a filtered list with its empty-state descriptor.
func writePage[T any](c *gin.Context, page service.Page[T]) {
	middleware.SetQueryMeta(c, page.FromCache, page.Stale)
	meta := middleware.Meta(c)
	if page.EmptyState != nil {
		meta["emptyState"] = page.EmptyState
	}
	response.JSON(c, http.StatusOK, page.Items, page.Pagination, meta)
}

// bindJSON decodes the body. Field rules are checked by the dialog, not here.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "corpo da requisição inválido"))
		return false
	}
	return true
}

func dialogMeta(snap dialog.Snapshot) map[string]interface{} {
	return map[string]interface{}{"dialog": snap}
}

// writeMutation renders the outcome of a dialog-backed mutation. Failures keep
// the dialog state so the UI can leave the form open with its errors.
func writeMutation(c *gin.Context, status int, data interface{}, snap dialog.Snapshot, err error) {
	if err != nil {
		response.Error(c, err, dialogMeta(snap))
		return
	}
	if data == nil {
		response.JSON(c, status, gin.H{"dialog": snap}, nil)
		return
	}
	response.JSON(c, status, data, nil, dialogMeta(snap))
}

func trimmedParam(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}

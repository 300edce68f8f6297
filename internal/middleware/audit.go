package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/pkg/middleware/requestid"
)

// AuditRecorder persists audit rows. *repository.AuditRepository satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Audit records read-only actions that still need a trail, such as report
// downloads. Mutations are audited by the executor instead.
func Audit(recorder AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if recorder == nil {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			Outcome:   models.AuditOutcomeSuccess,
			Message:   fmt.Sprintf("%s %s %d", c.Request.Method, c.FullPath(), c.Writer.Status()),
			RequestID: requestid.Value(c),
			CreatedAt: time.Now().UTC(),
		}
		if sess, ok := CurrentSession(c); ok {
			userID := sess.UserID()
			entry.UserID = &userID
			entry.Portal = string(sess.CurrentPortal)
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		if c.Writer.Status() >= 400 {
			entry.Outcome = models.AuditOutcomeFailure
		}

		// The response is already written; a failed audit write cannot change it.
		_ = recorder.Record(context.WithoutCancel(c.Request.Context()), entry)
	}
}

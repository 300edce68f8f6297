package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

// RequirePortal restricts a route to sessions of the given portals. It must
// run after Session.
func RequirePortal(portals ...models.Portal) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !sess.In(portals...) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "acesso não permitido neste portal"))
			c.Abort()
			return
		}
		c.Next()
	}
}

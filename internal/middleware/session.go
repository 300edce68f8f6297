package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "session"

// SessionResolver turns an access token into a session. *service.AuthService
// satisfies it.
type SessionResolver interface {
	Resolve(token string) (session.Session, error)
}

// Session protects routes by requiring a valid access token.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "sessão não encontrada"))
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is present but does not block.
func OptionalSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if sess, err := resolver.Resolve(token); err == nil {
				c.Set(ContextSessionKey, sess)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by Session. The zero session is
// returned, with ok false, on unauthenticated requests.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return session.Session{}, false
	}
	sess, ok := value.(session.Session)
	if !ok || !sess.Authenticated() {
		return session.Session{}, false
	}
	return sess, true
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

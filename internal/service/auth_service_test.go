package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) models.JWTClaims {
	return models.JWTClaims{
		UserID:   "u-1",
		Role:     role,
		Email:    "ana@example.com",
		FullName: "Ana Souza",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lms",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthServiceResolve(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "s3cret", Issuer: "lms"}, zap.NewNop())
	token := signToken(t, "s3cret", validClaims("polo"))

	sess, err := svc.Resolve(token)

	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.UserID())
	assert.Equal(t, models.PortalPartner, sess.CurrentPortal)
	assert.Equal(t, "Ana Souza", sess.CurrentUser.FullName)
	assert.Equal(t, token, sess.Token)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "s3cret", Issuer: "lms"}, zap.NewNop())

	cases := map[string]string{
		"wrong secret": signToken(t, "other", validClaims("admin")),
		"garbage":      "not-a-token",
	}
	expired := validClaims("admin")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	cases["expired"] = signToken(t, "s3cret", expired)
	wrongIssuer := validClaims("admin")
	wrongIssuer.Issuer = "someone-else"
	cases["wrong issuer"] = signToken(t, "s3cret", wrongIssuer)
	noUser := validClaims("admin")
	noUser.UserID = ""
	cases["no user"] = signToken(t, "s3cret", noUser)

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}

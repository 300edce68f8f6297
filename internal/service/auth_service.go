package service

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

// AuthService validates access tokens issued by the LMS backend. The gateway
// never issues tokens itself.
type AuthService struct {
	config config.JWTConfig
	logger *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: cfg, logger: logger}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	var opts []jwt.ParserOption
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "sessão inválida ou expirada")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.UserID) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sessão inválida")
	}

	return claims, nil
}

// Resolve turns a bearer token into the caller's session.
func (s *AuthService) Resolve(tokenString string) (session.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return session.Session{}, err
	}
	return session.FromClaims(claims, tokenString), nil
}

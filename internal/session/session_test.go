package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

func TestFromClaims(t *testing.T) {
	s := FromClaims(&models.JWTClaims{UserID: "u1", Role: "PARTNER", Email: "p@x.com"}, "tok")

	assert.True(t, s.Authenticated())
	assert.Equal(t, models.PortalPartner, s.CurrentPortal)
	assert.Equal(t, "partner:u1", s.Scope())
	assert.Equal(t, "tok", s.Token)
	assert.False(t, s.IsLoading)
}

func TestFromClaimsPrefersExplicitPortal(t *testing.T) {
	s := FromClaims(&models.JWTClaims{UserID: "u1", Role: "admin", Portal: models.PortalStudent}, "")

	assert.Equal(t, models.PortalStudent, s.CurrentPortal)
	assert.True(t, s.In(models.PortalAdmin, models.PortalStudent))
	assert.False(t, s.In(models.PortalPartner))
}

func TestFromNilClaims(t *testing.T) {
	assert.False(t, FromClaims(nil, "x").Authenticated())
}

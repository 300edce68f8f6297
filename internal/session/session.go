package session

import (
	"strings"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

// Session is the caller's identity for one request.
type Session struct {
	CurrentUser   models.UserInfo `json:"currentUser"`
	CurrentPortal models.Portal   `json:"currentPortal"`
	IsLoading     bool            `json:"isLoading"`
	Token         string          `json:"-"`
}

// FromClaims builds a session from validated token claims. When the token
// names no portal it is derived from the role.
func FromClaims(claims *models.JWTClaims, token string) Session {
	if claims == nil {
		return Session{}
	}
	portal := claims.Portal
	if !portal.Valid() {
		portal = PortalForRole(claims.Role)
	}
	return Session{
		CurrentUser: models.UserInfo{
			ID:       claims.UserID,
			Email:    claims.Email,
			FullName: claims.FullName,
			Role:     claims.Role,
		},
		CurrentPortal: portal,
		Token:         token,
	}
}

// PortalForRole maps platform roles onto portals.
func PortalForRole(role string) models.Portal {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "superadmin", "staff":
		return models.PortalAdmin
	case "partner", "polo":
		return models.PortalPartner
	default:
		return models.PortalStudent
	}
}

// Authenticated reports whether the session carries a user.
func (s Session) Authenticated() bool {
	return s.CurrentUser.ID != ""
}

// UserID is shorthand for CurrentUser.ID.
func (s Session) UserID() string {
	return s.CurrentUser.ID
}

// Scope partitions cached data: different users never share entries.
func (s Session) Scope() string {
	return string(s.CurrentPortal) + ":" + s.CurrentUser.ID
}

// In reports whether the session belongs to one of portals.
func (s Session) In(portals ...models.Portal) bool {
	for _, p := range portals {
		if s.CurrentPortal == p {
			return true
		}
	}
	return false
}

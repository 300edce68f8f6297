package models

import "github.com/golang-jwt/jwt/v5"

// Portal identifies which portal shell a user is signed into.
type Portal string

const (
	PortalAdmin   Portal = "admin"
	PortalPartner Portal = "partner"
	PortalStudent Portal = "student"
)

// Valid reports whether p is a known portal.
func (p Portal) Valid() bool {
	switch p {
	case PortalAdmin, PortalPartner, PortalStudent:
		return true
	}
	return false
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// JWTClaims is the payload of platform-issued access tokens.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Portal   Portal `json:"portal"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

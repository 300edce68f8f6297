package dto

import "github.com/noah-isme/lms-portal-gateway/internal/session"

// NavItem is one sidebar entry.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

// Shell wraps every portal page.
type Shell struct {
	Session    session.Session `json:"session"`
	Title      string          `json:"title"`
	Navigation []NavItem       `json:"navigation"`
}

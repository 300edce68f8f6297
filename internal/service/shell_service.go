package service

import (
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
)

var portalTitles = map[models.Portal]string{
	models.PortalAdmin:   "Portal Administrativo",
	models.PortalPartner: "Portal do Parceiro",
	models.PortalStudent: "Portal do Aluno",
}

var navigation = map[models.Portal][]dto.NavItem{
	models.PortalAdmin: {
		{Key: "dashboard", Label: "Dashboard", Path: "/admin", Icon: "layout-dashboard"},
		{Key: "courses", Label: "Cursos", Path: "/admin/courses", Icon: "book-open"},
		{Key: "documents", Label: "Documentos", Path: "/admin/documents", Icon: "file-check"},
		{Key: "certifications", Label: "Certificações", Path: "/admin/certifications", Icon: "award"},
		{Key: "contracts", Label: "Contratos", Path: "/admin/contracts", Icon: "file-signature"},
		{Key: "payments", Label: "Pagamentos", Path: "/admin/payments", Icon: "credit-card"},
		{Key: "messages", Label: "Mensagens", Path: "/admin/messages", Icon: "mail"},
		{Key: "assistant", Label: "Assistente IA", Path: "/admin/assistant", Icon: "sparkles"},
		{Key: "audit", Label: "Auditoria", Path: "/admin/audit", Icon: "shield"},
	},
	models.PortalPartner: {
		{Key: "dashboard", Label: "Dashboard", Path: "/partner", Icon: "layout-dashboard"},
		{Key: "certifications", Label: "Certificações", Path: "/partner/certifications", Icon: "award"},
		{Key: "payments", Label: "Pagamentos", Path: "/partner/payments", Icon: "credit-card"},
		{Key: "messages", Label: "Mensagens", Path: "/partner/messages", Icon: "mail"},
	},
	models.PortalStudent: {
		{Key: "dashboard", Label: "Início", Path: "/student", Icon: "home"},
		{Key: "courses", Label: "Cursos", Path: "/student/courses", Icon: "book-open"},
		{Key: "documents", Label: "Meus documentos", Path: "/student/documents", Icon: "file-up"},
		{Key: "contracts", Label: "Contratos", Path: "/student/contracts", Icon: "file-signature"},
		{Key: "payments", Label: "Financeiro", Path: "/student/payments", Icon: "wallet"},
		{Key: "messages", Label: "Mensagens", Path: "/student/messages", Icon: "mail"},
		{Key: "assistant", Label: "Assistente IA", Path: "/student/assistant", Icon: "sparkles"},
	},
}

// ShellService describes the chrome around every portal page.
type ShellService struct {
	assistantEnabled bool
}

// NewShellService constructs a ShellService. The assistant entry is hidden
// when the assistant is disabled.
func NewShellService(assistantEnabled bool) *ShellService {
	return &ShellService{assistantEnabled: assistantEnabled}
}

// Shell returns the title and navigation for the caller's portal.
func (s *ShellService) Shell(sess session.Session) dto.Shell {
	items := navigation[sess.CurrentPortal]
	nav := make([]dto.NavItem, 0, len(items))
	for _, item := range items {
		if item.Key == "assistant" && !s.assistantEnabled {
			continue
		}
		nav = append(nav, item)
	}
	return dto.Shell{
		Session:    sess,
		Title:      portalTitles[sess.CurrentPortal],
		Navigation: nav,
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/middleware"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
)

// Handlers groups every HTTP handler of the gateway.
type Handlers struct {
	Courses        *CourseHandler
	Documents      *DocumentHandler
	Certifications *CertificationHandler
	Contracts      *ContractHandler
	Payments       *PaymentHandler
	Messages       *MessageHandler
	Assistant      *AssistantHandler
	Dashboard      *DashboardHandler
	Notifications  *NotificationHandler
	Audit          *AuditHandler
	Metrics        *MetricsHandler
}

// RouterConfig carries what the routes need besides the handlers.
type RouterConfig struct {
	Prefix   string
	Sessions middleware.SessionResolver
	Recorder middleware.AuditRecorder
}

// Register mounts the portal API under cfg.Prefix. Every route except the
// socket requires a session; the socket authenticates with a ticket.
func Register(r gin.IRouter, cfg RouterConfig, h Handlers) {
	admin := middleware.RequirePortal(models.PortalAdmin)
	adminOrPartner := middleware.RequirePortal(models.PortalAdmin, models.PortalPartner)
	adminOrStudent := middleware.RequirePortal(models.PortalAdmin, models.PortalStudent)

	r.GET(cfg.Prefix+"/notifications/ws", h.Notifications.Stream)

	api := r.Group(cfg.Prefix)
	api.Use(middleware.Session(cfg.Sessions))

	api.GET("/session", h.Dashboard.Session)
	api.GET("/shell", h.Dashboard.Shell)
	api.GET("/dashboard", h.Dashboard.Dashboard)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/:id", h.Courses.Get)
	courses.GET("/:id/disciplines", h.Courses.Disciplines)
	courses.GET("/:id/form", admin, h.Courses.Form)
	courses.POST("", admin, h.Courses.Create)
	courses.PUT("/:id", admin, h.Courses.Update)
	courses.DELETE("/:id", admin, h.Courses.Delete)
	courses.POST("/:id/image", admin, h.Courses.UploadImage)

	documents := api.Group("/documents", adminOrStudent)
	documents.GET("", h.Documents.List)
	documents.POST("", h.Documents.Upload)
	documents.POST("/:id/approve", admin, h.Documents.Approve)
	documents.POST("/:id/reject", admin, h.Documents.Reject)

	certifications := api.Group("/certifications", adminOrPartner)
	certifications.GET("", h.Certifications.List)
	certifications.POST("/:id/approve", admin, h.Certifications.Approve)
	certifications.POST("/:id/reject", admin, h.Certifications.Reject)

	contracts := api.Group("/contracts", adminOrStudent)
	contracts.GET("", h.Contracts.List)
	contracts.GET("/:id", h.Contracts.Get)
	contracts.POST("/:id/sign", h.Contracts.Sign)

	payments := api.Group("/payments")
	payments.GET("", h.Payments.List)
	payments.GET("/summary", h.Payments.Summary)
	payments.GET("/export", middleware.Audit(cfg.Recorder, "payment.export", "payment"), h.Payments.Export)
	payments.GET("/:id", h.Payments.Get)
	payments.POST("/:id/mark-as-paid", adminOrPartner, h.Payments.MarkPaid)

	messages := api.Group("/messages")
	messages.GET("", h.Messages.Inbox)
	messages.GET("/:id", h.Messages.Open)
	messages.POST("", h.Messages.Send)

	assistant := api.Group("/assistant")
	assistant.GET("/messages", h.Assistant.History)
	assistant.POST("/messages", h.Assistant.Ask)
	assistant.DELETE("/messages", h.Assistant.Clear)
	assistant.POST("/content", admin, h.Assistant.RequestContent)

	api.GET("/notifications", h.Notifications.Recent)
	api.POST("/notifications/ticket", h.Notifications.Ticket)

	api.GET("/audit-logs", admin, h.Audit.List)
	api.GET("/system/metrics", admin, h.Metrics.Snapshot)
}

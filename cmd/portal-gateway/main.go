package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-portal-gateway/api/swagger"
	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/handler"
	"github.com/noah-isme/lms-portal-gateway/internal/middleware"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/notify"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/repository"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/pkg/ai"
	"github.com/noah-isme/lms-portal-gateway/pkg/cache"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	"github.com/noah-isme/lms-portal-gateway/pkg/database"
	"github.com/noah-isme/lms-portal-gateway/pkg/jobs"
	"github.com/noah-isme/lms-portal-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-portal-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-portal-gateway/pkg/middleware/requestid"
	"github.com/noah-isme/lms-portal-gateway/pkg/ticket"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

// @title LMS Portal Gateway
// @version 1.0.0
// @description Backend-for-frontend of the admin, partner and student portals
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate audit tables", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	hub := notify.NewHub(cfg.Notifications, logr)
	defer hub.Close()

	backend := upstream.New(cfg.Upstream, logr, upstream.WithObserver(metrics))
	queries := newQueryClient(cfg, redisClient, metrics, logr)
	queries.OnInvalidate(hub.Invalidated)
	go queries.RunJanitor(ctx, time.Minute, cfg.Query.GCTime)

	var auditRepo *repository.AuditRepository
	executorOpts := []mutation.Option{
		mutation.WithNotifier(hub),
		mutation.WithObserver(metrics),
		mutation.WithFallbackMessage(backend.FallbackMessage()),
	}
	if redisClient != nil {
		executorOpts = append(executorOpts, mutation.WithLocker(repository.NewLockRepository(redisClient)))
	}
	if db != nil {
		auditRepo = repository.NewAuditRepository(db)
		executorOpts = append(executorOpts, mutation.WithAudit(auditRepo))
	}
	mutations := mutation.NewExecutor(queries, logr, executorOpts...)

	validate := dialog.NewValidator()
	deps := service.Deps{
		Backend:   backend,
		Queries:   queries,
		Mutations: mutations,
		Validate:  validate,
		Logger:    logr,
	}

	assistant, stopAssistant := newAssistant(ctx, cfg, mutations, hub, metrics, validate, logr)
	defer stopAssistant()

	courses := service.NewCourseService(deps)
	documents := service.NewDocumentService(deps)
	certifications := service.NewCertificationService(deps)
	contracts := service.NewContractService(deps)
	payments := service.NewPaymentService(deps, nil, nil)
	messages := service.NewMessageService(deps)
	dashboard := service.NewDashboardService(courses, documents, certifications, payments, logr)
	shell := service.NewShellService(assistant.Enabled())
	auth := service.NewAuthService(cfg.JWT, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	probes := map[string]handler.Probe{}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if db != nil {
		probes["database"] = db.PingContext
	}
	metricsHandler := handler.NewMetricsHandler(metrics, probes)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Interfaces stay nil when auditing is off so handlers can tell.
	auditHandler := handler.NewAuditHandler(nil)
	var recorder middleware.AuditRecorder
	if auditRepo != nil {
		auditHandler = handler.NewAuditHandler(auditRepo)
		recorder = auditRepo
	}
	handlers := handler.Handlers{
		Courses:        handler.NewCourseHandler(courses),
		Documents:      handler.NewDocumentHandler(documents),
		Certifications: handler.NewCertificationHandler(certifications),
		Contracts:      handler.NewContractHandler(contracts),
		Payments:       handler.NewPaymentHandler(payments),
		Messages:       handler.NewMessageHandler(messages),
		Assistant:      handler.NewAssistantHandler(assistant),
		Dashboard:      handler.NewDashboardHandler(dashboard, shell),
		Notifications:  handler.NewNotificationHandler(hub, ticket.NewSigner(cfg.JWT.Secret, cfg.Notifications.TicketTTL), cfg.CORS.AllowedOrigins, logr),
		Audit:          auditHandler,
		Metrics:        metricsHandler,
	}
	handler.Register(r, handler.RouterConfig{
		Prefix:   cfg.APIPrefix,
		Sessions: auth,
		Recorder: recorder,
	}, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newQueryClient(cfg *config.Config, redisClient *redis.Client, metrics *service.MetricsService, logr *zap.Logger) *query.Client {
	opts := []query.Option{query.WithObserver(metrics)}
	if cfg.Query.SharedCache && redisClient != nil {
		repo := repository.NewCacheRepository(redisClient, logr)
		opts = append(opts, query.WithSharedStore(service.NewCacheService(repo, metrics, cfg.Query.SharedTTL, logr, true)))
	}
	return query.NewClient(query.Config{
		StaleTime:    cfg.Query.StaleTime,
		FetchTimeout: cfg.Query.FetchTimeout,
		SharedTTL:    cfg.Query.SharedTTL,
	}, logr, opts...)
}

// newAssistant builds the assistant and, when a model is configured, its
// content-generation queue. The returned func releases both.
func newAssistant(ctx context.Context, cfg *config.Config, mutations *mutation.Executor, hub *notify.Hub, metrics *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*service.AssistantService, func()) {
	var generator service.Generator
	var gemini *ai.Gemini
	if cfg.Assistant.Enabled {
		g, err := ai.NewGemini(ctx, cfg.Assistant)
		if err != nil {
			logr.Warn("assistant disabled", zap.Error(err))
		} else {
			gemini = g
			generator = g
		}
	}

	assistant := service.NewAssistantService(cfg.Assistant, generator, mutations, hub, validate, logr)
	if generator == nil {
		return assistant, func() {}
	}

	queue := jobs.NewQueue("assistant", assistant.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
		OnFailure:  assistant.HandleJobFailure,
	})
	queue.Start(ctx)
	assistant.UseQueue(queue, metrics)

	return assistant, func() {
		queue.Stop()
		_ = gemini.Close()
	}
}

package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

const probeTimeout = 2 * time.Second

// Probe checks one dependency the gateway needs to serve traffic.
type Probe func(ctx context.Context) error

// MetricsHandler serves the operational endpoints: Prometheus scrape, the
// admin counters view, liveness and readiness.
type MetricsHandler struct {
	metrics *service.MetricsService
	probes  map[string]Probe
}

// NewMetricsHandler constructs a metrics handler. Nil probes are skipped so
// optional backends can be passed unconditionally.
func NewMetricsHandler(metrics *service.MetricsService, probes map[string]Probe) *MetricsHandler {
	active := make(map[string]Probe, len(probes))
	for name, p := range probes {
		if p != nil {
			active[name] = p
		}
	}
	return &MetricsHandler{metrics: metrics, probes: active}
}

// Prometheus serves the scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Gateway counters
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health is the liveness check.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every probe and answers 503 when any of them fails.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := gin.H{}
	status, state := http.StatusOK, "ready"
	for _, name := range names {
		checks[name] = "ok"
		if err := h.probes[name](ctx); err != nil {
			checks[name] = err.Error()
			status, state = http.StatusServiceUnavailable, "degraded"
		}
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

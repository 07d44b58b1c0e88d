package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/response"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and the cache repository.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      Pinger
	cache   Pinger
	logger  *zap.Logger
}

// NewMetricsHandler constructs a metrics handler. db and cache are probed by Ready; either may be nil.
func NewMetricsHandler(metrics *service.MetricsService, db, cache Pinger, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{metrics: metrics, db: db, cache: cache, logger: logger}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database answers a ping. A failing cache only
// degrades the result since reads fall back to the database.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("dependency", "database"), zap.Error(err))
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	if h.cache != nil {
		if err := h.cache.PingContext(ctx); err != nil {
			h.logger.Warn("readiness check degraded", zap.String("dependency", "cache"), zap.Error(err))
			response.JSON(c, http.StatusOK, gin.H{"status": "degraded"})
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"})
}

// Package handlers provides the service health endpoint.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

// HealthHandlers contains the liveness endpoint
type HealthHandlers struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db *database.DB, logger *logging.ChanneledLogger) *HealthHandlers {
	return &HealthHandlers{
		db:     db,
		logger: logger,
	}
}

// GetHealth handles GET /api/v1/health - liveness plus a store ping
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	start := time.Now()

	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		h.logger.System().Error("Health check store ping failed", "error", err.Error())
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"responseTime": time.Since(start).String(),
		"timestamp":    time.Now().UTC(),
	})
}

// Package handlers provides HTTP handlers for scan history and statistics.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
)

// HistoryHandlers contains the scan history and statistics HTTP handlers
type HistoryHandlers struct {
	historyService *services.HistoryService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewHistoryHandlers creates history handlers with injected dependencies
func NewHistoryHandlers(historyService *services.HistoryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *HistoryHandlers {
	return &HistoryHandlers{
		historyService: historyService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetHistory handles GET /api/v1/history - the user's scans, newest first,
// with optional limit, scanType, and brand filters
func (h *HistoryHandlers) GetHistory(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("get_history_request")
	defer marker.Complete()
	h.logger.Scan().Debug("Received history request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	// A missing or malformed limit falls back to the configured default.
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.historyService.List(session.Username, limit, c.Query("scanType"), c.Query("brand"))
	if err != nil {
		h.logger.Scan().Error("History load failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.logger.Scan().Info("History request completed", "username", session.Username, "count", len(records), "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetHistory request", "duration", marker.Duration, "success", true, "count", len(records))

	c.JSON(http.StatusOK, gin.H{
		"history": records,
		"count":   len(records),
	})
}

// DeleteHistory handles DELETE /api/v1/history - clears the user's scans
func (h *HistoryHandlers) DeleteHistory(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("delete_history_request")
	defer marker.Complete()
	h.logger.Scan().Debug("Received history clear request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	if err := h.historyService.Clear(session.Username); err != nil {
		h.logger.Scan().Error("History clear failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for DeleteHistory request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scan history cleared",
	})
}

// GetStats handles GET /api/v1/stats - the user's aggregate scan statistics
func (h *HistoryHandlers) GetStats(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_stats_request")
	defer marker.Complete()
	h.logger.Scan().Debug("Received stats request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	stats, err := h.historyService.Stats(session.Username)
	if err != nil {
		h.logger.Scan().Error("Stats computation failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetStats request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, stats)
}

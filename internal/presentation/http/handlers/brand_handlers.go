// Package handlers provides HTTP handlers for the brand catalog and resolver.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
)

// ResolveRequest represents the request body for free-text brand lookups
type ResolveRequest struct {
	Query string `json:"query" binding:"required"`
}

// BrandHandlers contains all catalog and resolver HTTP handlers
type BrandHandlers struct {
	brandService *services.BrandService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewBrandHandlers creates brand handlers with injected dependencies
func NewBrandHandlers(brandService *services.BrandService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *BrandHandlers {
	return &BrandHandlers{
		brandService: brandService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetBrands handles GET /api/v1/brands - the static catalog
func (h *BrandHandlers) GetBrands(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_brands_request")
	defer marker.Complete()
	h.logger.Brand().Debug("Received brand catalog request", "method", c.Request.Method, "path", c.Request.URL.Path)

	brands := h.brandService.Catalog()

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"brands": brands,
		"count":  len(brands),
	})
}

// GetBrand handles GET /api/v1/brands/:id - one catalog record
func (h *BrandHandlers) GetBrand(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_brand_request")
	defer marker.Complete()

	brandID := c.Param("id")
	h.logger.Brand().Debug("Received brand request", "method", c.Request.Method, "path", c.Request.URL.Path, "brandId", brandID)

	record, ok := h.brandService.Get(brandID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, record)
}

// PostResolve handles POST /api/v1/brands/resolve - free-text brand lookup
func (h *BrandHandlers) PostResolve(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_resolve_request")
	defer marker.Complete()
	h.logger.Brand().Debug("Received resolve request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Brand().Error("Resolve request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result := h.brandService.Resolve(session.Username, req.Query, session.Preferences.AutoSaveScans)

	h.logger.Brand().Info("Resolve request completed", "username", session.Username, "brandId", result.Record.ID, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostResolve request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"brand": result.Record,
		"known": !result.Record.IsUnknown(),
		"saved": result.Saved,
	})
}

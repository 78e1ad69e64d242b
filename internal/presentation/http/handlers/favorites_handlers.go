// Package handlers provides HTTP handlers for the favorites list.
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

// AddFavoriteRequest represents the request body for saving a favorite
type AddFavoriteRequest struct {
	BrandID string `json:"brandId" binding:"required"`
	Notes   string `json:"notes"`
}

// FavoritesHandlers contains all favorites-related HTTP handlers
type FavoritesHandlers struct {
	favoritesService *services.FavoritesService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewFavoritesHandlers creates favorites handlers with injected dependencies
func NewFavoritesHandlers(favoritesService *services.FavoritesService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FavoritesHandlers {
	return &FavoritesHandlers{
		favoritesService: favoritesService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetFavorites handles GET /api/v1/favorites - the hydrated favorites list
func (h *FavoritesHandlers) GetFavorites(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("get_favorites_request")
	defer marker.Complete()
	h.logger.Brand().Debug("Received favorites request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	favorites, err := h.favoritesService.List(session.Username)
	if err != nil {
		h.logger.Brand().Error("Favorites load failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.logger.Brand().Info("Favorites request completed", "username", session.Username, "count", len(favorites), "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetFavorites request", "duration", marker.Duration, "success", true, "count", len(favorites))

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// PostFavorite handles POST /api/v1/favorites - saves a brand to the list
func (h *FavoritesHandlers) PostFavorite(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_favorite_request")
	defer marker.Complete()
	h.logger.Brand().Debug("Received add favorite request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Brand().Error("Add favorite request binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.favoritesService.Add(session.Username, req.BrandID, req.Notes); err != nil {
		h.logger.Brand().Error("Favorite add failed", "error", err.Error(), "username", session.Username, "brandId", req.BrandID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostFavorite request", "duration", marker.Duration, "success", true, "brandId", req.BrandID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Favorite added",
	})
}

// DeleteFavorite handles DELETE /api/v1/favorites/:brandId - removes one
// favorite; removing an absent favorite succeeds quietly
func (h *FavoritesHandlers) DeleteFavorite(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("delete_favorite_request")
	defer marker.Complete()

	brandID := c.Param("brandId")
	h.logger.Brand().Debug("Received remove favorite request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username, "brandId", brandID)

	if err := h.favoritesService.Remove(session.Username, brandID); err != nil {
		h.logger.Brand().Error("Favorite removal failed", "error", err.Error(), "username", session.Username, "brandId", brandID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for DeleteFavorite request", "duration", marker.Duration, "success", true, "brandId", brandID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Favorite removed",
	})
}

// DeleteFavorites handles DELETE /api/v1/favorites - empties the list
func (h *FavoritesHandlers) DeleteFavorites(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("delete_favorites_request")
	defer marker.Complete()
	h.logger.Brand().Debug("Received clear favorites request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	if err := h.favoritesService.Clear(session.Username); err != nil {
		h.logger.Brand().Error("Favorites clear failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for DeleteFavorites request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Favorites cleared",
	})
}

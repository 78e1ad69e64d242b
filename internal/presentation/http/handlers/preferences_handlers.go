// Package handlers provides HTTP handlers for account preferences and the
// theme catalog.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/theme"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
)

// UpdatePreferencesRequest represents the whole-document preferences write
type UpdatePreferencesRequest struct {
	Theme         string `json:"theme" binding:"required"`
	Notifications bool   `json:"notifications"`
	AutoSaveScans bool   `json:"autoSaveScans"`
}

// PreferencesHandlers contains the preferences and theme HTTP handlers
type PreferencesHandlers struct {
	preferencesService *services.PreferencesService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewPreferencesHandlers creates preferences handlers with injected dependencies
func NewPreferencesHandlers(preferencesService *services.PreferencesService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PreferencesHandlers {
	return &PreferencesHandlers{
		preferencesService: preferencesService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// GetPreferences handles GET /api/v1/preferences - the stored settings
// document
func (h *PreferencesHandlers) GetPreferences(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_preferences_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received preferences request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	prefs, err := h.preferencesService.Get(session.Username)
	if err != nil {
		h.logger.Auth().Error("Preferences load failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if prefs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, prefs)
}

// PutPreferences handles PUT /api/v1/preferences - replaces the settings
// document after validating the theme name
func (h *PreferencesHandlers) PutPreferences(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("put_preferences_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received preferences update request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Preferences update binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.preferencesService.Update(session.Username, user.Preferences{
		Theme:         req.Theme,
		Notifications: req.Notifications,
		AutoSaveScans: req.AutoSaveScans,
	})
	if err != nil {
		h.logger.Auth().Error("Preferences update failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !result.Success {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Error})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PutPreferences request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": result.Preferences,
	})
}

// GetThemes handles GET /api/v1/themes - the selectable palette catalog
func (h *PreferencesHandlers) GetThemes(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_themes_request")
	defer marker.Complete()
	h.logger.System().Debug("Received themes request", "method", c.Request.Method, "path", c.Request.URL.Path)

	themes := theme.All()

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"themes": themes,
		"count":  len(themes),
	})
}

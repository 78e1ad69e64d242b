// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostRegister handles POST /api/v1/auth/register - account creation
func (h *AuthHandlers) PostRegister(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_register_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received register request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var req struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password" binding:"required"`
		Email      string `json:"email"`
		RememberMe bool   `json:"rememberMe"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Register request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.authService.Register(req.Username, req.Password, req.Email, req.RememberMe)
	if err != nil {
		h.logger.Auth().Error("Registration failed", "error", err.Error(), "username", req.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !result.Success {
		status := http.StatusBadRequest
		if result.Duplicate {
			status = http.StatusConflict
		}
		marker.SetSuccess(false)
		h.logger.Perf().Info("Performance for PostRegister request", "duration", marker.Duration, "success", false)

		c.JSON(status, gin.H{"error": result.Error})
		return
	}

	h.setSessionCookies(c, result)

	h.logger.Auth().Info("Registration successful", "username", result.Account.Username, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostRegister request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   result.Token,
		"user":    result.Account,
	})
}

// PostLogin handles POST /api/v1/auth/login - credential authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_login_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received login request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var req struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"rememberMe"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.authService.Login(req.Username, req.Password, req.RememberMe)
	if err != nil {
		h.logger.Auth().Error("Login failed", "error", err.Error(), "username", req.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !result.Success {
		h.logger.Auth().Warn("Login attempt failed", "username", req.Username, "duration", time.Since(start))
		marker.SetSuccess(false)
		h.logger.Perf().Info("Performance for PostLogin request", "duration", marker.Duration, "success", false)

		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error})
		return
	}

	h.setSessionCookies(c, result)

	h.logger.Auth().Info("Login successful", "username", result.Account.Username, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostLogin request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"user":    result.Account,
		"message": "Login successful",
	})
}

// PostLogout handles POST /api/v1/auth/logout - invalidates the remember
// token and clears both auth cookies
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_logout_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received logout request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	if err := h.authService.Logout(session.Username); err != nil {
		h.logger.Auth().Error("Logout failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Expire both cookies.
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.RememberCookie, "", -1, "/", "", false, true)

	h.logger.Auth().Info("Logout completed", "username", session.Username, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostLogout request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

// GetProfile handles GET /api/v1/auth/profile - the session-scoped account
// with its activity statistics
func (h *AuthHandlers) GetProfile(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_profile_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received profile request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	profile, err := h.authService.Profile(session.Username)
	if err != nil {
		h.logger.Auth().Error("Profile load failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetProfile request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"user":  profile.Account,
		"stats": profile.Stats,
	})
}

// DeleteAccount handles DELETE /api/v1/auth/account - removes the account
// and everything it owns
func (h *AuthHandlers) DeleteAccount(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("delete_account_request")
	defer marker.Complete()
	h.logger.Auth().Debug("Received account deletion request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	if err := h.authService.DeleteAccount(session.Username); err != nil {
		h.logger.Auth().Error("Account deletion failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.RememberCookie, "", -1, "/", "", false, true)

	h.logger.Auth().Info("Account deleted", "username", session.Username, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for DeleteAccount request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account deleted",
	})
}

// setSessionCookies installs the session JWT and, when one was issued, the
// long-lived remember token.
func (h *AuthHandlers) setSessionCookies(c *gin.Context, result *services.AuthResult) {
	c.SetCookie(
		middleware.SessionCookie,         // name
		result.Token,                     // value
		int(config.SessionTTL.Seconds()), // maxAge
		"/",                              // path
		"",                               // domain (empty for current domain)
		false,                            // secure (set to true in production)
		true,                             // httpOnly
	)

	if result.RememberToken != "" {
		c.SetCookie(middleware.RememberCookie, result.RememberToken, config.RememberTokenDays*86400, "/", "", false, true)
	}
}

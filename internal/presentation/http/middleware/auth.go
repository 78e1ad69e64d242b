// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/security"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// Cookie names shared by the session middleware and the auth handlers.
const (
	SessionCookie  = "luminor_session"
	RememberCookie = "luminor_remember"
)

// SessionContext carries the authenticated identity and the preferences
// loaded for the request. Handlers read only this object; they never parse
// tokens themselves.
type SessionContext struct {
	SessionID   string
	Username    string
	Remembered  bool
	Theme       string
	Preferences user.Preferences
}

// SessionMiddleware authenticates the request from the Authorization header
// or the session cookie, falling back to the remember-me cookie when the JWT
// is absent or expired. Unauthenticated requests get a 401.
func SessionMiddleware(accounts user.AccountRepository, authService *services.AuthService, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromToken(extractToken(c))
		if session == nil {
			session = resumeFromRememberCookie(c, authService)
		}
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		account, err := accounts.FindByUsername(session.Username)
		if err != nil {
			logger.Auth().Error("Database error loading session account", "error", err.Error(), "username", session.Username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}
		if account == nil {
			// Valid token for an account that no longer exists.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		c.Set("session", &SessionContext{
			SessionID:   session.SessionID,
			Username:    session.Username,
			Remembered:  session.Remembered,
			Theme:       account.Preferences.Theme,
			Preferences: account.Preferences,
		})

		c.Next()
	}
}

// GetSession retrieves the session context from gin context
func GetSession(c *gin.Context) (*SessionContext, bool) {
	sessionCtx, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	ctx, ok := sessionCtx.(*SessionContext)
	return ctx, ok
}

// extractToken pulls the JWT from the Authorization header or, failing that,
// the session cookie.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func sessionFromToken(token string) *security.SessionClaims {
	if token == "" {
		return nil
	}
	claims, err := security.ValidateJWT(token, config.JWTSecret)
	if err != nil {
		return nil
	}
	return security.GetSessionFromClaims(claims)
}

// resumeFromRememberCookie exchanges a stored remember token for a fresh
// session JWT and re-sets the session cookie on the response.
func resumeFromRememberCookie(c *gin.Context, authService *services.AuthService) *security.SessionClaims {
	rememberToken, err := c.Cookie(RememberCookie)
	if err != nil || rememberToken == "" {
		return nil
	}

	result, err := authService.ResumeSession(rememberToken)
	if err != nil || !result.Success {
		return nil
	}

	c.SetCookie(SessionCookie, result.Token, int(config.SessionTTL.Seconds()), "/", "", false, true)
	return sessionFromToken(result.Token)
}

// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the decoded payload of a session token.
type SessionClaims struct {
	Username   string
	SessionID  string
	Remembered bool
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GetSessionFromClaims extracts the session identity from JWT claims.
func GetSessionFromClaims(claims jwt.MapClaims) *SessionClaims {
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return nil
	}
	sessionID, _ := claims["sessionId"].(string)
	remembered, _ := claims["remembered"].(bool)
	return &SessionClaims{
		Username:   username,
		SessionID:  sessionID,
		Remembered: remembered,
	}
}

// GenerateSessionToken creates a signed JWT for an authenticated session.
func GenerateSessionToken(username, sessionID string, remembered bool, jwtSecret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"username":   username,
		"sessionId":  sessionID,
		"remembered": remembered,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

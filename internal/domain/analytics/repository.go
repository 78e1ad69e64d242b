// Package analytics defines the interfaces for accessing analytics data.
package analytics

import "time"

// Event actions recorded by the application.
const (
	ActionBrandScanned     = "brand_scanned"
	ActionBrandFavorited   = "brand_favorited"
	ActionBrandUnfavorited = "brand_unfavorited"
	ActionUserRegistered   = "user_registered"
	ActionUserLogin        = "user_login"
)

// Event represents a user action recorded for offline analysis.
type Event struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventRepository defines the contract for storing analytics events. Writes
// are best-effort from the caller's point of view; the application never
// reads events back except to purge them on account deletion.
type EventRepository interface {
	// Store saves an event to the persistence layer.
	Store(event *Event) error

	// DeleteByUsername removes every event belonging to a user.
	DeleteByUsername(username string) error
}

// Package user defines the interfaces for accessing account, scan history,
// and favorites entities. These repositories abstract the data persistence
// details, ensuring the core application is clean and decoupled from the
// database.
package user

import (
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/theme"
)

// Scan types recorded in history rows.
const (
	ScanTypeManual  = "manual"
	ScanTypeAIImage = "ai_image"
)

// Account represents a registered user keyed by username.
type Account struct {
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"` // Never serialize password hash
	Email        string      `json:"email,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	Preferences  Preferences `json:"preferences"`
}

// Preferences is the per-account settings document stored as JSON.
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	AutoSaveScans bool   `json:"auto_save_scans"`
}

// DefaultPreferences returns the settings assigned to new accounts and used
// when a stored preferences document fails to parse.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         theme.DefaultName,
		Notifications: true,
		AutoSaveScans: true,
	}
}

// ScanRecord is one persisted scan event. Brand carries the full profile
// snapshot taken at scan time; loading attaches ScanMetadata to it.
type ScanRecord struct {
	ID         int64        `json:"id"`
	Username   string       `json:"username"`
	Brand      brand.Record `json:"brand"`
	ScanType   string       `json:"scan_type"`
	Confidence float64      `json:"confidence"`
	ImageHash  string       `json:"image_hash,omitempty"`
	ScannedAt  time.Time    `json:"scanned_at"`
}

// Favorite marks a brand saved by a user, with optional personal notes.
type Favorite struct {
	Username string    `json:"username"`
	BrandID  string    `json:"brandId"`
	Notes    string    `json:"notes,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// Stats aggregates a user's scanning activity for the dashboard.
type Stats struct {
	TotalScans     int     `json:"total_scans"`
	UniqueBrands   int     `json:"unique_brands"`
	FavoritesCount int     `json:"favorites_count"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// AccountRepository defines the operations for persisting Account entities.
// Find methods return (nil, nil) when no row matches.
type AccountRepository interface {
	FindByUsername(username string) (*Account, error)
	FindByRememberToken(token string) (*Account, error)
	Create(account *Account) error
	UpdateLastLogin(username string) error
	UpdatePreferences(username string, prefs Preferences) error
	SetRememberToken(username, token string, expires time.Time) error
	ClearRememberToken(username string) error
	Delete(username string) error
}

// HistoryRepository defines the operations for persisting ScanRecord entities.
type HistoryRepository interface {
	Save(record *ScanRecord) error
	ListByUsername(username string, limit int) ([]*ScanRecord, error)
	BrandIDs(username string) ([]string, error)
	LatestSnapshots(username string) (map[string]brand.Record, error)
	Count(username string) (int, error)
	AverageConfidence(username string) (float64, error)
	CountSince(since time.Time) (int, error)
	ListBrandIDsSince(since time.Time) ([]string, error)
	Clear(username string) error
}

// FavoritesRepository defines the operations for persisting Favorite entities.
type FavoritesRepository interface {
	Add(favorite *Favorite) error
	Remove(username, brandID string) error
	IsFavorite(username, brandID string) (bool, error)
	ListByUsername(username string) ([]*Favorite, error)
	BrandIDs(username string) ([]string, error)
	Count(username string) (int, error)
	CountAll() (int, error)
	Clear(username string) error
}

// Package analytics provides the concrete SQL-based implementation
// for analytics event persistence.
//
// PURPOSE: Store user events to database as they happen. Events are never
// read back by application logic; they exist for offline analysis and are
// purged when an account is deleted.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

// SQLEventRepository handles event persistence to database.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// Store saves a user event to the database.
func (r *SQLEventRepository) Store(event *analytics.Event) error {
	const query = `
		INSERT INTO analytics (username, action, data, timestamp)
		VALUES (?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing analytics event insert",
		"username", event.Username,
		"action", event.Action)

	var dataJSON any
	if len(event.Data) > 0 {
		encoded, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("failed to encode event data: %w", err)
		}
		dataJSON = string(encoded)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(query, event.Username, event.Action, dataJSON, event.Timestamp.UTC())
	if err != nil {
		r.logger.Database().Error("Analytics event insert failed",
			"error", err.Error(),
			"username", event.Username,
			"action", event.Action)
		return fmt.Errorf("failed to store analytics event: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Analytics event insert completed",
		"username", event.Username,
		"action", event.Action,
		"duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// DeleteByUsername removes every event belonging to a user.
func (r *SQLEventRepository) DeleteByUsername(username string) error {
	const query = `DELETE FROM analytics WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing analytics purge", "username", username)

	result, err := r.db.Exec(query, username)
	if err != nil {
		r.logger.Database().Error("Analytics purge failed", "error", err.Error(), "username", username)
		return fmt.Errorf("failed to purge analytics events: %w", err)
	}

	duration := time.Since(start)
	if affected, err := result.RowsAffected(); err == nil {
		r.logger.Database().Info("Analytics events purged", "username", username, "rows", affected, "duration", duration)
	}
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

var _ analytics.EventRepository = (*SQLEventRepository)(nil)

package user

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

// SQLHistoryRepository is the SQL-based implementation of the HistoryRepository.
type SQLHistoryRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLHistoryRepository creates a new instance of the repository.
func NewSQLHistoryRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLHistoryRepository {
	return &SQLHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Save persists one scan event. The brand profile is stored as a JSON
// snapshot so later catalog changes never rewrite history.
func (r *SQLHistoryRepository) Save(record *user.ScanRecord) error {
	const query = `
		INSERT INTO user_history (username, brand_data, scan_type, confidence, image_hash, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing history insert", "username", record.Username, "brandId", record.Brand.ID, "scanType", record.ScanType)

	snapshot := record.Brand
	snapshot.ScanMetadata = nil // metadata lives in row columns, not in the snapshot
	brandJSON, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	if record.ScannedAt.IsZero() {
		record.ScannedAt = time.Now().UTC()
	}

	var imageHash any
	if record.ImageHash != "" {
		imageHash = record.ImageHash
	}

	result, err := r.db.Exec(query, record.Username, string(brandJSON), record.ScanType, record.Confidence, imageHash, record.ScannedAt.UTC())
	if err != nil {
		r.logger.Database().Error("History insert failed", "error", err.Error(), "username", record.Username, "brandId", record.Brand.ID)
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}

	duration := time.Since(start)
	r.logger.Database().Info("History insert completed", "username", record.Username, "brandId", record.Brand.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// ListByUsername returns the most recent scans first. Rows whose snapshot
// fails to parse or carries no brand id are skipped rather than failing the
// whole listing.
func (r *SQLHistoryRepository) ListByUsername(username string, limit int) ([]*user.ScanRecord, error) {
	const query = `
		SELECT id, brand_data, scan_type, confidence, image_hash, scanned_at
		FROM user_history
		WHERE username = ?
		ORDER BY scanned_at DESC
		LIMIT ?`

	start := time.Now()
	r.logger.Database().Debug("Loading scan history", "username", username, "limit", limit)

	rows, err := r.db.Query(query, username, limit)
	if err != nil {
		r.logger.Database().Error("History query failed", "error", err.Error(), "username", username)
		return nil, err
	}
	defer rows.Close()

	records := []*user.ScanRecord{}
	skipped := 0
	for rows.Next() {
		var (
			rec        user.ScanRecord
			brandJSON  string
			imageHash  sql.NullString
			scannedStr string
		)
		if err := rows.Scan(&rec.ID, &brandJSON, &rec.ScanType, &rec.Confidence, &imageHash, &scannedStr); err != nil {
			r.logger.Database().Error("History row scan failed", "error", err.Error(), "username", username)
			return nil, err
		}

		if err := json.Unmarshal([]byte(brandJSON), &rec.Brand); err != nil || rec.Brand.ID == "" {
			skipped++
			continue
		}

		rec.Username = username
		rec.ImageHash = imageHash.String
		if t, perr := parseTimestamp(scannedStr); perr == nil {
			rec.ScannedAt = t
		}
		rec.Brand.ScanMetadata = &brand.ScanMetadata{
			ScanType:   rec.ScanType,
			Confidence: rec.Confidence,
			ScannedAt:  rec.ScannedAt.Format("2006-01-02 15:04:05"),
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if skipped > 0 {
		r.logger.Database().Warn("Skipped corrupt history snapshots", "username", username, "skipped", skipped)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Scan history loaded", "username", username, "count", len(records), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return records, nil
}

// BrandIDs returns the distinct brand ids found in a user's snapshots,
// including AI-synthesized ids and the unknown sentinel.
func (r *SQLHistoryRepository) BrandIDs(username string) ([]string, error) {
	const query = `SELECT brand_data FROM user_history WHERE username = ?`

	start := time.Now()
	rows, err := r.db.Query(query, username)
	if err != nil {
		r.logger.Database().Error("History brand id query failed", "error", err.Error(), "username", username)
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var ids []string
	for rows.Next() {
		var brandJSON string
		if err := rows.Scan(&brandJSON); err != nil {
			return nil, err
		}
		var snapshot struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(brandJSON), &snapshot); err != nil || snapshot.ID == "" {
			continue
		}
		if _, dup := seen[snapshot.ID]; dup {
			continue
		}
		seen[snapshot.ID] = struct{}{}
		ids = append(ids, snapshot.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, "AGGREGATE_HISTORY_BRAND_IDS", time.Since(start))
	return ids, nil
}

// LatestSnapshots returns the newest stored brand snapshot per brand id.
// Favorites hydration reads these when a favorite points at an
// AI-synthesized brand that never existed in the catalog.
func (r *SQLHistoryRepository) LatestSnapshots(username string) (map[string]brand.Record, error) {
	const query = `
		SELECT brand_data
		FROM user_history
		WHERE username = ?
		ORDER BY scanned_at DESC`

	start := time.Now()
	rows, err := r.db.Query(query, username)
	if err != nil {
		r.logger.Database().Error("History snapshot query failed", "error", err.Error(), "username", username)
		return nil, err
	}
	defer rows.Close()

	snapshots := make(map[string]brand.Record)
	for rows.Next() {
		var brandJSON string
		if err := rows.Scan(&brandJSON); err != nil {
			return nil, err
		}
		var rec brand.Record
		if err := json.Unmarshal([]byte(brandJSON), &rec); err != nil || rec.ID == "" {
			continue
		}
		if _, seen := snapshots[rec.ID]; seen {
			continue
		}
		snapshots[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, "AGGREGATE_HISTORY_LATEST_SNAPSHOTS", time.Since(start))
	return snapshots, nil
}

// Count returns the number of scans recorded for a user.
func (r *SQLHistoryRepository) Count(username string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_history WHERE username = ?`

	start := time.Now()
	var count int
	if err := r.db.QueryRow(query, username).Scan(&count); err != nil {
		r.logger.Database().Error("History count failed", "error", err.Error(), "username", username)
		return 0, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return count, nil
}

// AverageConfidence returns the raw AVG over a user's scans with a positive
// confidence, zero when there are none. Zero-confidence rows would otherwise
// drag manual lookups into the mean.
func (r *SQLHistoryRepository) AverageConfidence(username string) (float64, error) {
	const query = `SELECT AVG(confidence) FROM user_history WHERE username = ? AND confidence > 0`

	start := time.Now()
	var avg sql.NullFloat64
	if err := r.db.QueryRow(query, username).Scan(&avg); err != nil {
		r.logger.Database().Error("Confidence average failed", "error", err.Error(), "username", username)
		return 0, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// CountSince counts scans across all users at or after the given time.
func (r *SQLHistoryRepository) CountSince(since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM user_history WHERE scanned_at >= ?`

	start := time.Now()
	var count int
	if err := r.db.QueryRow(query, since.UTC()).Scan(&count); err != nil {
		r.logger.Database().Error("Global scan count failed", "error", err.Error())
		return 0, err
	}

	database.CheckAndLogSlowQuery(r.logger, "AGGREGATE_HISTORY_COUNT_SINCE", time.Since(start))
	return count, nil
}

// ListBrandIDsSince returns one brand id per scan across all users at or
// after the given time, duplicates included, for frequency aggregation.
func (r *SQLHistoryRepository) ListBrandIDsSince(since time.Time) ([]string, error) {
	const query = `SELECT brand_data FROM user_history WHERE scanned_at >= ?`

	start := time.Now()
	rows, err := r.db.Query(query, since.UTC())
	if err != nil {
		r.logger.Database().Error("Global brand id query failed", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var brandJSON string
		if err := rows.Scan(&brandJSON); err != nil {
			return nil, err
		}
		var snapshot struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(brandJSON), &snapshot); err != nil || snapshot.ID == "" {
			continue
		}
		ids = append(ids, snapshot.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, "AGGREGATE_HISTORY_BRAND_IDS_SINCE", time.Since(start))
	return ids, nil
}

// Clear removes every scan recorded for a user.
func (r *SQLHistoryRepository) Clear(username string) error {
	const query = `DELETE FROM user_history WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing history clear", "username", username)

	result, err := r.db.Exec(query, username)
	if err != nil {
		r.logger.Database().Error("History clear failed", "error", err.Error(), "username", username)
		return err
	}

	duration := time.Since(start)
	if affected, err := result.RowsAffected(); err == nil {
		r.logger.Database().Info("History cleared", "username", username, "rows", affected, "duration", duration)
	}
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

var _ user.HistoryRepository = (*SQLHistoryRepository)(nil)

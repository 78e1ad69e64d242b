package user

import (
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

// SQLFavoritesRepository is the SQL-based implementation of the FavoritesRepository.
type SQLFavoritesRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLFavoritesRepository creates a new instance of the repository.
func NewSQLFavoritesRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLFavoritesRepository {
	return &SQLFavoritesRepository{
		db:     db,
		logger: logger,
	}
}

// Add marks a brand as favorite. Adding an existing favorite is a no-op, so
// the operation is idempotent.
func (r *SQLFavoritesRepository) Add(favorite *user.Favorite) error {
	const query = `
		INSERT OR IGNORE INTO user_favorites (username, brand_id, notes, added_at)
		VALUES (?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing favorite insert", "username", favorite.Username, "brandId", favorite.BrandID)

	if favorite.AddedAt.IsZero() {
		favorite.AddedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(query, favorite.Username, favorite.BrandID, favorite.Notes, favorite.AddedAt.UTC())
	if err != nil {
		r.logger.Database().Error("Favorite insert failed", "error", err.Error(), "username", favorite.Username, "brandId", favorite.BrandID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Favorite insert completed", "username", favorite.Username, "brandId", favorite.BrandID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// Remove deletes one favorite. Removing an absent favorite is a no-op.
func (r *SQLFavoritesRepository) Remove(username, brandID string) error {
	const query = `DELETE FROM user_favorites WHERE username = ? AND brand_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, username, brandID)
	if err != nil {
		r.logger.Database().Error("Favorite delete failed", "error", err.Error(), "username", username, "brandId", brandID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Favorite delete completed", "username", username, "brandId", brandID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// IsFavorite reports whether the user has favorited the brand.
func (r *SQLFavoritesRepository) IsFavorite(username, brandID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM user_favorites WHERE username = ? AND brand_id = ?)`

	start := time.Now()
	var exists bool
	if err := r.db.QueryRow(query, username, brandID).Scan(&exists); err != nil {
		r.logger.Database().Error("Favorite lookup failed", "error", err.Error(), "username", username, "brandId", brandID)
		return false, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return exists, nil
}

// ListByUsername returns the user's favorites, most recent first.
func (r *SQLFavoritesRepository) ListByUsername(username string) ([]*user.Favorite, error) {
	const query = `
		SELECT username, brand_id, notes, added_at
		FROM user_favorites
		WHERE username = ?
		ORDER BY added_at DESC`

	start := time.Now()
	r.logger.Database().Debug("Loading favorites", "username", username)

	rows, err := r.db.Query(query, username)
	if err != nil {
		r.logger.Database().Error("Favorites query failed", "error", err.Error(), "username", username)
		return nil, err
	}
	defer rows.Close()

	favorites := []*user.Favorite{}
	for rows.Next() {
		var fav user.Favorite
		var addedStr string
		if err := rows.Scan(&fav.Username, &fav.BrandID, &fav.Notes, &addedStr); err != nil {
			return nil, err
		}
		if t, perr := parseTimestamp(addedStr); perr == nil {
			fav.AddedAt = t
		}
		favorites = append(favorites, &fav)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Favorites loaded", "username", username, "count", len(favorites), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return favorites, nil
}

// BrandIDs returns the brand ids the user has favorited.
func (r *SQLFavoritesRepository) BrandIDs(username string) ([]string, error) {
	const query = `SELECT brand_id FROM user_favorites WHERE username = ?`

	start := time.Now()
	rows, err := r.db.Query(query, username)
	if err != nil {
		r.logger.Database().Error("Favorite id query failed", "error", err.Error(), "username", username)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return ids, nil
}

// Count returns the number of favorites for a user.
func (r *SQLFavoritesRepository) Count(username string) (int, error) {
	const query = `SELECT COUNT(*) FROM user_favorites WHERE username = ?`

	start := time.Now()
	var count int
	if err := r.db.QueryRow(query, username).Scan(&count); err != nil {
		r.logger.Database().Error("Favorite count failed", "error", err.Error(), "username", username)
		return 0, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return count, nil
}

// CountAll returns the number of favorites across all users.
func (r *SQLFavoritesRepository) CountAll() (int, error) {
	const query = `SELECT COUNT(*) FROM user_favorites`

	start := time.Now()
	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		r.logger.Database().Error("Global favorite count failed", "error", err.Error())
		return 0, err
	}

	database.CheckAndLogSlowQuery(r.logger, "AGGREGATE_FAVORITES_COUNT_ALL", time.Since(start))
	return count, nil
}

// Clear removes every favorite for a user.
func (r *SQLFavoritesRepository) Clear(username string) error {
	const query = `DELETE FROM user_favorites WHERE username = ?`

	start := time.Now()
	result, err := r.db.Exec(query, username)
	if err != nil {
		r.logger.Database().Error("Favorites clear failed", "error", err.Error(), "username", username)
		return err
	}

	duration := time.Since(start)
	if affected, err := result.RowsAffected(); err == nil {
		r.logger.Database().Info("Favorites cleared", "username", username, "rows", affected, "duration", duration)
	}
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

var _ user.FavoritesRepository = (*SQLFavoritesRepository)(nil)

// Package user provides the concrete SQL-based implementations of
// the user domain repositories (Account, ScanRecord, Favorite).
package user

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

// SQLAccountRepository is the SQL-based implementation of the AccountRepository.
type SQLAccountRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAccountRepository creates a new instance of the repository.
func NewSQLAccountRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAccountRepository {
	return &SQLAccountRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUsername retrieves an Account by its primary key.
func (r *SQLAccountRepository) FindByUsername(username string) (*user.Account, error) {
	const query = `
		SELECT username, password_hash, email, created_at, last_login, preferences
		FROM users
		WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading account", "username", username)

	row := r.db.QueryRow(query, username)
	account, err := r.scanAccount(row)
	if err != nil {
		r.logger.Database().Error("Failed to load account", "error", err.Error(), "username", username)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return account, nil
}

// FindByRememberToken retrieves the Account holding an unexpired remember
// token. Expired tokens behave exactly like unknown ones.
func (r *SQLAccountRepository) FindByRememberToken(token string) (*user.Account, error) {
	const query = `
		SELECT username, password_hash, email, created_at, last_login, preferences, token_expires
		FROM users
		WHERE remember_token = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading account by remember token")

	var account user.Account
	var email, lastLogin, expiresStr sql.NullString
	var createdAtStr, prefsJSON string

	err := r.db.QueryRow(query, token).Scan(
		&account.Username,
		&account.PasswordHash,
		&email,
		&createdAtStr,
		&lastLogin,
		&prefsJSON,
		&expiresStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load account by remember token", "error", err.Error())
		return nil, err
	}

	if !expiresStr.Valid {
		return nil, nil
	}
	expires, err := parseTimestamp(expiresStr.String)
	if err != nil || !expires.After(time.Now().UTC()) {
		return nil, nil
	}

	account.Email = email.String
	account.CreatedAt, _ = parseTimestamp(createdAtStr)
	if lastLogin.Valid {
		if t, perr := parseTimestamp(lastLogin.String); perr == nil {
			account.LastLogin = &t
		}
	}
	account.Preferences = parsePreferences(prefsJSON)

	duration := time.Since(start)
	r.logger.Database().Info("Account resumed via remember token", "username", account.Username, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return &account, nil
}

// Create saves a new Account to the database.
func (r *SQLAccountRepository) Create(account *user.Account) error {
	const query = `
		INSERT INTO users (username, password_hash, email, created_at, preferences)
		VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing account insert", "username", account.Username)

	prefsJSON, err := json.Marshal(account.Preferences)
	if err != nil {
		return err
	}

	email := sql.NullString{String: account.Email, Valid: account.Email != ""}
	_, err = r.db.Exec(query, account.Username, account.PasswordHash, email, account.CreatedAt.UTC(), string(prefsJSON))
	if err != nil {
		r.logger.Database().Error("Account insert failed", "error", err.Error(), "username", account.Username)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Account insert completed", "username", account.Username, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// UpdateLastLogin stamps the account's last successful login.
func (r *SQLAccountRepository) UpdateLastLogin(username string) error {
	const query = `UPDATE users SET last_login = ? WHERE username = ?`

	start := time.Now()
	_, err := r.db.Exec(query, time.Now().UTC(), username)
	if err != nil {
		r.logger.Database().Error("Last login update failed", "error", err.Error(), "username", username)
		return err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// UpdatePreferences replaces the stored preferences document.
func (r *SQLAccountRepository) UpdatePreferences(username string, prefs user.Preferences) error {
	const query = `UPDATE users SET preferences = ? WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing preferences update", "username", username)

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query, string(prefsJSON), username)
	if err != nil {
		r.logger.Database().Error("Preferences update failed", "error", err.Error(), "username", username)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Preferences update completed", "username", username, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// SetRememberToken stores a remember token and its expiry for the account.
func (r *SQLAccountRepository) SetRememberToken(username, token string, expires time.Time) error {
	const query = `UPDATE users SET remember_token = ?, token_expires = ? WHERE username = ?`

	start := time.Now()
	_, err := r.db.Exec(query, token, expires.UTC(), username)
	if err != nil {
		r.logger.Database().Error("Remember token update failed", "error", err.Error(), "username", username)
		return err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// ClearRememberToken invalidates any stored remember token for the account.
func (r *SQLAccountRepository) ClearRememberToken(username string) error {
	const query = `UPDATE users SET remember_token = NULL, token_expires = NULL WHERE username = ?`

	start := time.Now()
	_, err := r.db.Exec(query, username)
	if err != nil {
		r.logger.Database().Error("Remember token clear failed", "error", err.Error(), "username", username)
		return err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// Delete removes the account row. Dependent history, favorites, and
// analytics rows are removed by their own repositories.
func (r *SQLAccountRepository) Delete(username string) error {
	const query = `DELETE FROM users WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing account delete", "username", username)

	_, err := r.db.Exec(query, username)
	if err != nil {
		r.logger.Database().Error("Account delete failed", "error", err.Error(), "username", username)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Account delete completed", "username", username, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// scanAccount is a helper function to scan a sql.Row into an Account struct.
func (r *SQLAccountRepository) scanAccount(row *sql.Row) (*user.Account, error) {
	var account user.Account
	var email, lastLogin sql.NullString
	var createdAtStr, prefsJSON string

	err := row.Scan(
		&account.Username,
		&account.PasswordHash,
		&email,
		&createdAtStr,
		&lastLogin,
		&prefsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	account.Email = email.String
	account.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		if t, perr := parseTimestamp(lastLogin.String); perr == nil {
			account.LastLogin = &t
		}
	}
	account.Preferences = parsePreferences(prefsJSON)

	return &account, nil
}

// parsePreferences merges the stored document over the defaults. Malformed
// JSON and missing keys both resolve to default values.
func parsePreferences(prefsJSON string) user.Preferences {
	prefs := user.DefaultPreferences()
	if prefsJSON == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(prefsJSON), &prefs); err != nil {
		return user.DefaultPreferences()
	}
	return prefs
}

// timestampFormats covers the layouts produced by the sqlite and libsql
// drivers plus the bare CURRENT_TIMESTAMP default.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp format: %s", value)
}

var _ user.AccountRepository = (*SQLAccountRepository)(nil)

package user

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	schema "github.com/luminor-ai/luminor-go/internal/infrastructure/database"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.Level(12), // above error, keeps test output quiet
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func newTestDB(t *testing.T) (*database.DB, *logging.ChanneledLogger) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(t.TempDir(), "luminor_test.db"))
	db, err := database.NewConnection("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := schema.NewTableCreator().CreateSchema(db.DB); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db, newTestLogger(t)
}

func createTestAccount(t *testing.T, repo *SQLAccountRepository, username string) *user.Account {
	t.Helper()
	account := &user.Account{
		Username:     username,
		PasswordHash: "$2a$10$fakehashfakehashfakehashfakehashfakehashfakehashfakeha",
		CreatedAt:    time.Now().UTC(),
		Preferences:  user.DefaultPreferences(),
	}
	if err := repo.Create(account); err != nil {
		t.Fatalf("failed to create account %q: %v", username, err)
	}
	return account
}

func TestAccountRoundTrip(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)

	created := createTestAccount(t, repo, "alice")

	loaded, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected account, got nil")
	}
	if loaded.Username != "alice" {
		t.Errorf("username = %q, want %q", loaded.Username, "alice")
	}
	if loaded.PasswordHash != created.PasswordHash {
		t.Errorf("password hash mismatch")
	}
	if loaded.LastLogin != nil {
		t.Errorf("fresh account should have no last login")
	}
	if loaded.Preferences.Theme != "Cyber Dark" || !loaded.Preferences.Notifications || !loaded.Preferences.AutoSaveScans {
		t.Errorf("preferences = %+v, want defaults", loaded.Preferences)
	}

	missing, err := repo.FindByUsername("nobody")
	if err != nil {
		t.Fatalf("FindByUsername(nobody) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got %+v", missing)
	}
}

func TestAccountLastLogin(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)
	createTestAccount(t, repo, "alice")

	if err := repo.UpdateLastLogin("alice"); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}

	loaded, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if loaded.LastLogin == nil {
		t.Fatal("expected last login to be set")
	}
	if time.Since(*loaded.LastLogin) > time.Minute {
		t.Errorf("last login %v too far in the past", loaded.LastLogin)
	}
}

func TestRememberTokenLifecycle(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)
	createTestAccount(t, repo, "alice")

	if err := repo.SetRememberToken("alice", "token-alpha", time.Now().UTC().Add(30*24*time.Hour)); err != nil {
		t.Fatalf("SetRememberToken failed: %v", err)
	}

	found, err := repo.FindByRememberToken("token-alpha")
	if err != nil {
		t.Fatalf("FindByRememberToken failed: %v", err)
	}
	if found == nil || found.Username != "alice" {
		t.Fatalf("expected alice via token, got %+v", found)
	}

	if acct, _ := repo.FindByRememberToken("no-such-token"); acct != nil {
		t.Errorf("unknown token should resolve to nil, got %+v", acct)
	}

	if err := repo.ClearRememberToken("alice"); err != nil {
		t.Fatalf("ClearRememberToken failed: %v", err)
	}
	if acct, _ := repo.FindByRememberToken("token-alpha"); acct != nil {
		t.Errorf("cleared token should resolve to nil, got %+v", acct)
	}
}

func TestExpiredRememberTokenIgnored(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)
	createTestAccount(t, repo, "alice")

	if err := repo.SetRememberToken("alice", "token-stale", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("SetRememberToken failed: %v", err)
	}

	found, err := repo.FindByRememberToken("token-stale")
	if err != nil {
		t.Fatalf("FindByRememberToken failed: %v", err)
	}
	if found != nil {
		t.Errorf("expired token must behave like an unknown one, got %+v", found)
	}
}

func TestPreferencesUpdateAndMerge(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)
	createTestAccount(t, repo, "alice")

	updated := user.Preferences{Theme: "Ocean Light", Notifications: false, AutoSaveScans: true}
	if err := repo.UpdatePreferences("alice", updated); err != nil {
		t.Fatalf("UpdatePreferences failed: %v", err)
	}

	loaded, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if loaded.Preferences != updated {
		t.Errorf("preferences = %+v, want %+v", loaded.Preferences, updated)
	}

	// A partial document keeps defaults for missing keys.
	if _, err := db.Exec(`UPDATE users SET preferences = ? WHERE username = ?`, `{"theme":"Ocean Light"}`, "alice"); err != nil {
		t.Fatalf("raw preferences update failed: %v", err)
	}
	loaded, _ = repo.FindByUsername("alice")
	if loaded.Preferences.Theme != "Ocean Light" {
		t.Errorf("theme = %q, want Ocean Light", loaded.Preferences.Theme)
	}
	if !loaded.Preferences.Notifications || !loaded.Preferences.AutoSaveScans {
		t.Errorf("missing keys should fall back to defaults, got %+v", loaded.Preferences)
	}

	// Malformed JSON falls back to the full default document.
	if _, err := db.Exec(`UPDATE users SET preferences = ? WHERE username = ?`, `{not json`, "alice"); err != nil {
		t.Fatalf("raw preferences update failed: %v", err)
	}
	loaded, _ = repo.FindByUsername("alice")
	if loaded.Preferences != user.DefaultPreferences() {
		t.Errorf("corrupt preferences should resolve to defaults, got %+v", loaded.Preferences)
	}
}

func TestHistorySaveAndList(t *testing.T) {
	db, logger := newTestDB(t)
	accounts := NewSQLAccountRepository(db, logger)
	history := NewSQLHistoryRepository(db, logger)
	createTestAccount(t, accounts, "alice")

	nike, _ := brand.Lookup("nike")
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	first := &user.ScanRecord{
		Username:   "alice",
		Brand:      nike,
		ScanType:   user.ScanTypeManual,
		Confidence: 1.0,
		ScannedAt:  base,
	}
	if err := history.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first.ID == 0 {
		t.Error("Save should backfill the row id")
	}

	aiBrand := brand.Record{ID: "unknown_1a2b3c4d", Name: "Glowtech", Industry: "Technology", Competitors: []string{}, Stores: []brand.Store{}, SimilarLogos: []string{}, Keywords: []string{}}
	second := &user.ScanRecord{
		Username:   "alice",
		Brand:      aiBrand,
		ScanType:   user.ScanTypeAIImage,
		Confidence: 0.87,
		ImageHash:  "deadbeef",
		ScannedAt:  base.Add(time.Hour),
	}
	if err := history.Save(second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := history.ListByUsername("alice", 50)
	if err != nil {
		t.Fatalf("ListByUsername failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Brand.ID != "unknown_1a2b3c4d" || records[1].Brand.ID != "nike" {
		t.Errorf("records not in most-recent-first order: %q, %q", records[0].Brand.ID, records[1].Brand.ID)
	}

	meta := records[0].Brand.ScanMetadata
	if meta == nil {
		t.Fatal("loaded snapshot missing scan metadata")
	}
	if meta.ScanType != user.ScanTypeAIImage {
		t.Errorf("scan type = %q, want %q", meta.ScanType, user.ScanTypeAIImage)
	}
	if meta.Confidence != 0.87 {
		t.Errorf("confidence = %v, want 0.87", meta.Confidence)
	}
	if records[0].ImageHash != "deadbeef" {
		t.Errorf("image hash = %q, want deadbeef", records[0].ImageHash)
	}
	if records[1].ScannedAt.Unix() != base.Unix() {
		t.Errorf("scanned at = %v, want %v", records[1].ScannedAt, base)
	}

	limited, err := history.ListByUsername("alice", 1)
	if err != nil {
		t.Fatalf("ListByUsername with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Brand.ID != "unknown_1a2b3c4d" {
		t.Errorf("limit should keep the newest record, got %+v", limited)
	}
}

func TestHistorySkipsCorruptSnapshots(t *testing.T) {
	db, logger := newTestDB(t)
	accounts := NewSQLAccountRepository(db, logger)
	history := NewSQLHistoryRepository(db, logger)
	createTestAccount(t, accounts, "alice")

	nike, _ := brand.Lookup("nike")
	if err := history.Save(&user.ScanRecord{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual, Confidence: 1.0}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Rows with broken JSON or no brand id must not break the listing.
	for _, payload := range []string{`{broken`, `{"name":"No ID Here"}`} {
		if _, err := db.Exec(`INSERT INTO user_history (username, brand_data, scan_type, confidence) VALUES (?, ?, 'manual', 1.0)`, "alice", payload); err != nil {
			t.Fatalf("raw history insert failed: %v", err)
		}
	}

	records, err := history.ListByUsername("alice", 50)
	if err != nil {
		t.Fatalf("ListByUsername failed: %v", err)
	}
	if len(records) != 1 || records[0].Brand.ID != "nike" {
		t.Errorf("corrupt rows should be skipped, got %+v", records)
	}
}

func TestHistoryLatestSnapshots(t *testing.T) {
	db, logger := newTestDB(t)
	accounts := NewSQLAccountRepository(db, logger)
	history := NewSQLHistoryRepository(db, logger)
	createTestAccount(t, accounts, "alice")

	nike, _ := brand.Lookup("nike")
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	older := brand.Record{ID: "unknown_1a2b3c4d", Name: "Glowtech"}
	newer := brand.Record{ID: "unknown_1a2b3c4d", Name: "Glowtech Labs"}
	saves := []*user.ScanRecord{
		{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual, Confidence: 1.0, ScannedAt: base},
		{Username: "alice", Brand: older, ScanType: user.ScanTypeAIImage, Confidence: 0.5, ScannedAt: base.Add(time.Minute)},
		{Username: "alice", Brand: newer, ScanType: user.ScanTypeAIImage, Confidence: 0.9, ScannedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range saves {
		if err := history.Save(rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	snapshots, err := history.LatestSnapshots("alice")
	if err != nil {
		t.Fatalf("LatestSnapshots failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	if snapshots["nike"].Name != "Nike" {
		t.Errorf("nike snapshot = %+v", snapshots["nike"])
	}
	if snapshots["unknown_1a2b3c4d"].Name != "Glowtech Labs" {
		t.Errorf("ad hoc snapshot = %+v, want the newest profile", snapshots["unknown_1a2b3c4d"])
	}
}

func TestHistoryAggregates(t *testing.T) {
	db, logger := newTestDB(t)
	accounts := NewSQLAccountRepository(db, logger)
	history := NewSQLHistoryRepository(db, logger)
	createTestAccount(t, accounts, "alice")
	createTestAccount(t, accounts, "bob")

	nike, _ := brand.Lookup("nike")
	apple, _ := brand.Lookup("apple")
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	saves := []*user.ScanRecord{
		{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual, Confidence: 1.0, ScannedAt: base},
		{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual, ScannedAt: base.Add(30 * time.Second)},
		{Username: "alice", Brand: nike, ScanType: user.ScanTypeAIImage, Confidence: 0.8, ScannedAt: base.Add(time.Minute)},
		{Username: "alice", Brand: apple, ScanType: user.ScanTypeManual, Confidence: 0.6, ScannedAt: base.Add(2 * time.Minute)},
		{Username: "bob", Brand: apple, ScanType: user.ScanTypeManual, Confidence: 1.0, ScannedAt: base.Add(3 * time.Minute)},
	}
	for _, rec := range saves {
		if err := history.Save(rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	count, err := history.Count("alice")
	if err != nil || count != 4 {
		t.Errorf("Count = %d, %v, want 4", count, err)
	}

	// The zero-confidence row stays out of the average.
	avg, err := history.AverageConfidence("alice")
	if err != nil {
		t.Fatalf("AverageConfidence failed: %v", err)
	}
	if avg < 0.79 || avg > 0.81 {
		t.Errorf("avg confidence = %v, want 0.8", avg)
	}

	ids, err := history.BrandIDs("alice")
	if err != nil {
		t.Fatalf("BrandIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("distinct brand ids = %v, want [nike apple]", ids)
	}

	empty, err := history.AverageConfidence("bob-has-none")
	if err != nil || empty != 0 {
		t.Errorf("AverageConfidence for empty history = %v, %v, want 0", empty, err)
	}

	global, err := history.CountSince(base.Add(90 * time.Second))
	if err != nil || global != 2 {
		t.Errorf("CountSince = %d, %v, want 2", global, err)
	}

	recent, err := history.ListBrandIDsSince(base.Add(90 * time.Second))
	if err != nil {
		t.Fatalf("ListBrandIDsSince failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent ids = %v, want two apple entries", recent)
	}

	if err := history.Clear("alice"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ = history.Count("alice")
	if count != 0 {
		t.Errorf("Count after clear = %d, want 0", count)
	}
	if bobCount, _ := history.Count("bob"); bobCount != 1 {
		t.Errorf("clearing alice must not touch bob, count = %d", bobCount)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	db, logger := newTestDB(t)
	accounts := NewSQLAccountRepository(db, logger)
	favorites := NewSQLFavoritesRepository(db, logger)
	createTestAccount(t, accounts, "alice")
	createTestAccount(t, accounts, "bob")

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := favorites.Add(&user.Favorite{Username: "alice", BrandID: "nike", Notes: "first pair", AddedAt: base}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := favorites.Add(&user.Favorite{Username: "alice", BrandID: "apple", AddedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	// Duplicate add is a no-op, not an error.
	if err := favorites.Add(&user.Favorite{Username: "alice", BrandID: "nike", Notes: "changed", AddedAt: base.Add(2 * time.Minute)}); err != nil {
		t.Fatalf("duplicate Add failed: %v", err)
	}

	count, err := favorites.Count("alice")
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v, want 2", count, err)
	}

	isFav, err := favorites.IsFavorite("alice", "nike")
	if err != nil || !isFav {
		t.Errorf("IsFavorite(alice, nike) = %v, %v, want true", isFav, err)
	}
	if isFav, _ := favorites.IsFavorite("bob", "nike"); isFav {
		t.Error("favorites must be scoped per user")
	}

	list, err := favorites.ListByUsername("alice")
	if err != nil {
		t.Fatalf("ListByUsername failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d favorites, want 2", len(list))
	}
	if list[0].BrandID != "apple" || list[1].BrandID != "nike" {
		t.Errorf("favorites not in most-recent-first order: %q, %q", list[0].BrandID, list[1].BrandID)
	}
	if list[1].Notes != "first pair" {
		t.Errorf("duplicate add must not overwrite notes, got %q", list[1].Notes)
	}

	if err := favorites.Add(&user.Favorite{Username: "bob", BrandID: "nike"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if total, _ := favorites.CountAll(); total != 3 {
		t.Errorf("CountAll = %d, want 3", total)
	}

	if err := favorites.Remove("alice", "nike"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if isFav, _ := favorites.IsFavorite("alice", "nike"); isFav {
		t.Error("removed favorite still present")
	}
	// Removing an absent favorite is a no-op.
	if err := favorites.Remove("alice", "nike"); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}

	ids, err := favorites.BrandIDs("alice")
	if err != nil || len(ids) != 1 || ids[0] != "apple" {
		t.Errorf("BrandIDs = %v, %v, want [apple]", ids, err)
	}

	if err := favorites.Clear("alice"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if count, _ := favorites.Count("alice"); count != 0 {
		t.Errorf("Count after clear = %d, want 0", count)
	}
	if bobCount, _ := favorites.Count("bob"); bobCount != 1 {
		t.Errorf("clearing alice must not touch bob, count = %d", bobCount)
	}
}

func TestAccountDelete(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAccountRepository(db, logger)
	createTestAccount(t, repo, "alice")

	if err := repo.Delete("alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	loaded, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("deleted account still loads: %+v", loaded)
	}
}

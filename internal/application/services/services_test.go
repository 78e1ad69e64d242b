package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/ai"
	schema "github.com/luminor-ai/luminor-go/internal/infrastructure/database"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/analytics"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
	userrepo "github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/user"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// testEnv wires real SQL repositories over a throwaway SQLite file so
// service tests exercise the same queries production runs.
type testEnv struct {
	db        *database.DB
	logger    *logging.ChanneledLogger
	tracker   *performance.Tracker
	accounts  *userrepo.SQLAccountRepository
	history   *userrepo.SQLHistoryRepository
	favorites *userrepo.SQLFavoritesRepository
	events    *analyticsrepo.SQLEventRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	config.JWTSecret = "test-secret-0123456789abcdef"

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.Level(12), // above error, keeps test output quiet
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(t.TempDir(), "luminor_test.db"))
	db, err := database.NewConnection("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := schema.NewTableCreator().CreateSchema(db.DB); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return &testEnv{
		db:        db,
		logger:    logger,
		tracker:   performance.NewTracker(nil),
		accounts:  userrepo.NewSQLAccountRepository(db, logger),
		history:   userrepo.NewSQLHistoryRepository(db, logger),
		favorites: userrepo.NewSQLFavoritesRepository(db, logger),
		events:    analyticsrepo.NewSQLEventRepository(db, logger),
	}
}

func (e *testEnv) authService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(e.logger, e.tracker, e.accounts, e.history, e.favorites, e.events, nil)
}

func (e *testEnv) registerUser(t *testing.T, username string) {
	t.Helper()
	result, err := e.authService(t).Register(username, "hunter2x", "", false)
	if err != nil {
		t.Fatalf("Register(%q) failed: %v", username, err)
	}
	if !result.Success {
		t.Fatalf("Register(%q) rejected: %s", username, result.Error)
	}
}

func (e *testEnv) countRows(t *testing.T, table, username string) int {
	t.Helper()
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE username = ?", table)
	if err := e.db.QueryRow(query, username).Scan(&count); err != nil {
		t.Fatalf("counting %s rows: %v", table, err)
	}
	return count
}

// fakeAnalyzer satisfies ai.Analyzer with a canned reply.
type fakeAnalyzer struct {
	analysis *ai.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) AnalyzeImage(_ context.Context, _ []byte) (*ai.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

func (f *fakeAnalyzer) Enabled() bool { return f.err == nil }

// fakeTranscriber satisfies transcription.Transcriber with a canned
// transcript.
type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeTranscriber) Enabled() bool { return f.err == nil }

// capturingPublisher records activity events instead of broadcasting them.
type capturingPublisher struct {
	events []messaging.ActivityEvent
}

func (p *capturingPublisher) Publish(event messaging.ActivityEvent) {
	p.events = append(p.events, event)
}

// asPublisher keeps a nil *capturingPublisher from turning into a non-nil
// interface value, which would defeat the recorder's nil check.
func asPublisher(p *capturingPublisher) messaging.Publisher {
	if p == nil {
		return nil
	}
	return p
}

// testImage returns a small decodable PNG upload.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture image: %v", err)
	}
	return buf.Bytes()
}

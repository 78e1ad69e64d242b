// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/ai"
	schema "github.com/luminor-ai/luminor-go/internal/infrastructure/database"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/email"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/media"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/analytics"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/database"
	userrepo "github.com/luminor-ai/luminor-go/internal/infrastructure/persistence/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/security"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/transcription"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies.
type Container struct {
	// Application services (stateless singletons)
	AuthService        *services.AuthService
	BrandService       *services.BrandService
	ScanService        *services.ScanService
	HistoryService     *services.HistoryService
	FavoritesService   *services.FavoritesService
	PreferencesService *services.PreferencesService

	// Infrastructure dependencies
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	DB          *database.DB
	Accounts    user.AccountRepository
	Analyzer    *ai.GeminiAnalyzer
	Transcriber *transcription.AssemblyAITranscriber
	Broadcaster *messaging.ActivityBroadcaster
}

// NewContainer creates and wires all singleton services. The broadcaster is
// wired but not running; the caller starts its loop.
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: true,
		LogDirectory:    config.LogDirectory,
		JSONFormat:      true,
		IncludeSource:   true,
		DefaultLevel:    parseLogLevel(config.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	perfTracker := performance.NewTracker(nil)

	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
	}

	driverName, dsn := database.ResolveDSN()
	db, err := database.NewConnectionWithLogger(driverName, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := schema.NewTableCreator().CreateSchema(db.DB); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	accounts := userrepo.NewSQLAccountRepository(db, logger)
	history := userrepo.NewSQLHistoryRepository(db, logger)
	favorites := userrepo.NewSQLFavoritesRepository(db, logger)
	events := analyticsrepo.NewSQLEventRepository(db, logger)

	analyzer, err := ai.NewGeminiAnalyzer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	transcriber := transcription.NewAssemblyAITranscriber(logger)

	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Email disabled", "reason", err.Error())
		emailService = nil
	}

	broadcaster := messaging.NewActivityBroadcaster(history, favorites, logger)
	images := media.NewImageProcessor(config.MaxImageDimension)

	return &Container{
		AuthService:        services.NewAuthService(logger, perfTracker, accounts, history, favorites, events, emailService),
		BrandService:       services.NewBrandService(logger, perfTracker, history, events, broadcaster),
		ScanService:        services.NewScanService(logger, perfTracker, analyzer, transcriber, images, history, events, broadcaster),
		HistoryService:     services.NewHistoryService(logger, perfTracker, history, favorites),
		FavoritesService:   services.NewFavoritesService(logger, perfTracker, favorites, history, events, broadcaster),
		PreferencesService: services.NewPreferencesService(logger, perfTracker, accounts),

		Logger:      logger,
		PerfTracker: perfTracker,
		DB:          db,
		Accounts:    accounts,
		Analyzer:    analyzer,
		Transcriber: transcriber,
		Broadcaster: broadcaster,
	}, nil
}

// Close releases the container's long-lived resources in dependency order.
func (c *Container) Close() {
	if err := c.Analyzer.Close(); err != nil {
		c.Logger.Shutdown().Error("Error closing analyzer", "error", err.Error())
	}
	if err := c.DB.Close(); err != nil {
		c.Logger.Shutdown().Error("Error closing database", "error", err.Error())
	}
	if err := c.Logger.Close(); err != nil {
		fmt.Printf("error closing logger: %v\n", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

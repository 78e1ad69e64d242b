// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/container"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/server"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until the
// process receives a shutdown signal.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("\033[32m" + `
 ██╗     ██╗   ██╗███╗   ███╗██╗███╗   ██╗ ██████╗ ██████╗
 ██║     ██║   ██║████╗ ████║██║████╗  ██║██╔═══██╗██╔══██╗
 ██║     ██║   ██║██╔████╔██║██║██╔██╗ ██║██║   ██║██████╔╝
 ██║     ██║   ██║██║╚██╔╝██║██║██║╚██╗██║██║   ██║██╔══██╗
 ███████╗╚██████╔╝██║ ╚═╝ ██║██║██║ ╚████║╚██████╔╝██║  ██║
 ╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═╝
` + "\033[97m" + `
  AI brand scanner
` + "\033[0m")

	// Step 1: Create dependency injection container
	log.Println("Initializing dependency injection container...")
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}

	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete - switching to channeled logging")

	// Step 2: Start the live activity broadcaster and tracker maintenance
	go appContainer.Broadcaster.Run()
	go appContainer.PerfTracker.RunCleanupLoop()
	logger.Startup().Info("Live activity broadcaster started", "interval", config.ActivityBroadcastInterval)

	// Step 3: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"aiConfigured", appContainer.Analyzer.Enabled(),
		"transcriptionConfigured", appContainer.Transcriber.Enabled())

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	// Closes the analyzer, the database, and finally the logger itself.
	appContainer.Close()

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/container"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/handlers"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	brandHandlers := handlers.NewBrandHandlers(container.BrandService, container.Logger, container.PerfTracker)
	scanHandlers := handlers.NewScanHandlers(container.ScanService, container.Logger, container.PerfTracker)
	historyHandlers := handlers.NewHistoryHandlers(container.HistoryService, container.Logger, container.PerfTracker)
	favoritesHandlers := handlers.NewFavoritesHandlers(container.FavoritesService, container.Logger, container.PerfTracker)
	preferencesHandlers := handlers.NewPreferencesHandlers(container.PreferencesService, container.Logger, container.PerfTracker)
	activityHandlers := handlers.NewActivityHandlers(container.Broadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.Logger)

	api := r.Group("/api/v1")
	{
		// Public endpoints
		api.GET("/health", healthHandlers.GetHealth)
		api.POST("/auth/register", authHandlers.PostRegister)
		api.POST("/auth/login", authHandlers.PostLogin)
		api.GET("/brands", brandHandlers.GetBrands)
		api.GET("/brands/:id", brandHandlers.GetBrand)
		api.GET("/themes", preferencesHandlers.GetThemes)

		// Session-scoped endpoints
		session := api.Group("/")
		session.Use(middleware.SessionMiddleware(container.Accounts, container.AuthService, container.Logger))
		{
			session.POST("/auth/logout", authHandlers.PostLogout)
			session.GET("/auth/profile", authHandlers.GetProfile)
			session.DELETE("/auth/account", authHandlers.DeleteAccount)

			session.POST("/brands/resolve", brandHandlers.PostResolve)

			session.POST("/scan/image", scanHandlers.PostScanImage)
			session.POST("/scan/voice", scanHandlers.PostScanVoice)

			session.GET("/history", historyHandlers.GetHistory)
			session.DELETE("/history", historyHandlers.DeleteHistory)
			session.GET("/stats", historyHandlers.GetStats)

			session.GET("/favorites", favoritesHandlers.GetFavorites)
			session.POST("/favorites", favoritesHandlers.PostFavorite)
			session.DELETE("/favorites/:brandId", favoritesHandlers.DeleteFavorite)
			session.DELETE("/favorites", favoritesHandlers.DeleteFavorites)

			session.GET("/preferences", preferencesHandlers.GetPreferences)
			session.PUT("/preferences", preferencesHandlers.PutPreferences)

			session.GET("/activity/live", activityHandlers.GetActivityLive)
		}
	}

	return r
}

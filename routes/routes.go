package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"signalist_backend/config"
	"signalist_backend/controllers"
	"signalist_backend/middleware"
	"signalist_backend/services"
	"signalist_backend/services/alerts"
)

// Deps carries the constructed services the routes need
type Deps struct {
	Config     *config.Config
	Alerts     *services.AlertStore
	Watchlists *services.WatchlistService
	Quotes     *services.QuoteService
	Checker    *alerts.Checker
}

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, deps Deps) {
	// Initialize controllers
	alertController := controllers.NewAlertController(deps.Alerts, deps.Checker)
	watchlistController := controllers.NewWatchlistController(deps.Watchlists)
	stockController := controllers.NewStockController(deps.Quotes)

	authRequired := middleware.JWTAuthMiddleware(deps.Config.JWTSecret)
	writeLimit := middleware.NewRateLimiter(30, time.Minute).Middleware()

	// API v1 group
	api := router.Group("/api/v1")
	{
		// Alert routes
		alertRoutes := api.Group("/alerts", authRequired)
		{
			alertRoutes.GET("", alertController.GetAlerts)
			alertRoutes.POST("", writeLimit, alertController.CreateAlert)
			alertRoutes.DELETE("/:id", writeLimit, alertController.DeleteAlert)
			alertRoutes.PATCH("/:id/toggle", writeLimit, alertController.ToggleAlert)
			alertRoutes.POST("/check", alertController.CheckAlerts)
		}

		// Watchlist routes
		watchlistRoutes := api.Group("/watchlist", authRequired)
		{
			watchlistRoutes.GET("", watchlistController.GetWatchlist)
			watchlistRoutes.POST("", writeLimit, watchlistController.AddToWatchlist)
			watchlistRoutes.DELETE("/:symbol", writeLimit, watchlistController.RemoveFromWatchlist)
		}

		// Market data routes
		stockRoutes := api.Group("/stocks")
		{
			stockRoutes.GET("/search", stockController.SearchStocks)
			stockRoutes.GET("/:symbol/quote", stockController.GetQuote)
		}

		market := api.Group("/market")
		{
			market.GET("/news", stockController.GetMarketNews)
		}
	}
}

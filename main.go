package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"signalist_backend/config"
	"signalist_backend/routes"
	"signalist_backend/scheduler"
	"signalist_backend/services"
	"signalist_backend/services/alerts"
	"signalist_backend/services/notifier"
)

// app holds what the health endpoints and shutdown path need. Guarded
// by mu because initialization finishes in the background while the
// server is already accepting requests.
type app struct {
	mu          sync.RWMutex
	mongo       *services.MongoClient
	deliveries  *notifier.DeliveryLog
	scheduler   *scheduler.Scheduler
	initialized bool
}

func main() {
	log.Println("==============================================")
	log.Println("  Signalist Backend API - Starting...")
	log.Println("==============================================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger())

	state := &app{}

	// Health endpoints come up first so the platform can see the
	// service is listening while the database connects in background.
	setupHealthEndpoints(router, state)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Connect storage and wire the alert pipeline in background
	go func() {
		mongoClient, err := services.ConnectMongo(cfg)
		if err != nil {
			log.Printf("ERROR: MongoDB connection failed: %v", err)
			log.Println("Service will continue in limited mode (health check only)")
			return
		}

		deliveryLog, err := notifier.OpenDeliveryLog(cfg.DeliveryLogPath)
		if err != nil {
			log.Printf("ERROR: Delivery log open failed: %v", err)
			mongoClient.Close()
			return
		}

		db := mongoClient.Database()
		alertStore := services.NewAlertStore(db)
		watchlists := services.NewWatchlistService(db)
		directory := services.NewUserDirectory(db)
		quotes := services.NewQuoteService(cfg)
		quoteCache := services.NewQuoteCache(quotes, cfg.QuoteFetchWorkers)
		emailSender := notifier.NewEmailNotifier(cfg)

		checker := alerts.NewChecker(alertStore, quoteCache, directory, emailSender, deliveryLog)
		newsDigest := services.NewNewsDigest(directory, quotes, emailSender)

		routes.SetupRoutes(router, routes.Deps{
			Config:     cfg,
			Alerts:     alertStore,
			Watchlists: watchlists,
			Quotes:     quotes,
			Checker:    checker,
		})

		jobScheduler := scheduler.NewScheduler(checker, deliveryLog, newsDigest, cfg.AlertCheckInterval)
		jobScheduler.Start()

		state.mu.Lock()
		state.mongo = mongoClient
		state.deliveries = deliveryLog
		state.scheduler = jobScheduler
		state.initialized = true
		state.mu.Unlock()

		log.Println("Application fully initialized with database")
	}()

	gracefulShutdown(server, state)
}

// setupHealthEndpoints sets up liveness and readiness probes
func setupHealthEndpoints(router *gin.Engine, state *app) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Signalist Backend API",
			"version": "1.0.0",
		})
	})

	// Liveness probe - always returns OK if server is running
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness probe - checks if service is ready to receive traffic
	router.GET("/ready", func(c *gin.Context) {
		state.mu.RLock()
		ready := state.initialized
		mongo := state.mongo
		state.mu.RUnlock()

		if !ready || mongo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database not connected",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := mongo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database ping failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/startup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "started"})
	})
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" || path == "/startup" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Only log errors or slow requests
		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown handles graceful shutdown of the process
func gracefulShutdown(server *http.Server, state *app) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	state.mu.RLock()
	jobScheduler := state.scheduler
	mongo := state.mongo
	deliveries := state.deliveries
	state.mu.RUnlock()

	// Stop the scheduler first so no new cycle starts; in-flight work
	// for the current cycle is allowed to finish.
	if jobScheduler != nil {
		jobScheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if mongo != nil {
		if err := mongo.Close(); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		} else {
			log.Println("MongoDB connection closed")
		}
	}
	if deliveries != nil {
		deliveries.Close()
	}

	log.Println("Server shutdown completed")
}

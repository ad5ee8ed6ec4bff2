package main

import (
	"log"
	"net/http"

	"github.com/AtRiskMedia/pulsetrack-go/api"
	"github.com/AtRiskMedia/pulsetrack-go/cache"
	"github.com/AtRiskMedia/pulsetrack-go/config"
	"github.com/AtRiskMedia/pulsetrack-go/exporter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	aggregator := cache.NewAggregator()
	log.Println("Telemetry aggregator initialized")

	// Start periodic maintenance
	cache.StartCleanupRoutine(aggregator)

	metricsExporter := exporter.NewPrometheusExporter()

	telemetryHandlers := api.NewTelemetryHandlers(aggregator, metricsExporter)
	analyticsHandlers := api.NewAnalyticsHandlers(aggregator, metricsExporter)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.FilteredLogger())
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// Configure CORS: localhost origins for development plus the deployed
	// origin from config
	allowOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://[::1]:3000",
	}
	if config.AllowedOrigin != "" {
		allowOrigins = append(allowOrigins, config.AllowedOrigin)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
		},
		AllowCredentials: false,
	}))

	r.Use(api.SecurityHeaders())
	r.Use(api.NewRateLimiter().Middleware())

	// Telemetry ingestion routes
	v1 := r.Group("/api/v1")
	{
		telemetry := v1.Group("/telemetry")
		{
			telemetry.POST("/init", telemetryHandlers.InitSessionHandler)
			telemetry.POST("/heartbeat", telemetryHandlers.HeartbeatHandler)
			telemetry.POST("/track", telemetryHandlers.TrackEntryHandler)
		}

		v1.GET("/analytics/snapshot", analyticsHandlers.SnapshotHandler)
		v1.GET("/health", api.HealthHandler(aggregator))
	}

	// Operator surfaces
	r.GET("/dashboard", analyticsHandlers.DashboardHandler)
	r.GET("/metrics", metricsExporter.Handler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	log.Printf("Starting server on :%s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

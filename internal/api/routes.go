// Package api wires the handlers to the Echo instance
package api

import (
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/marketbots/nsemetricsapi/internal/api/handlers"
	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/pkg/utils/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) {

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", indexRoute)

	// Instrument routes
	instrumentHandler := handlers.NewInstrumentHandler(db)
	instrumentGroup := api.Group("/instrument")
	instrumentGroup.POST("/update", instrumentHandler.UpdateInstruments)
	instrumentGroup.GET("/symbols", instrumentHandler.GetEquitySymbols)

	// Metrics routes
	metricsHandler := handlers.NewMetricsHandler(db, redisClient)
	metricsGroup := api.Group("/metrics")
	metricsGroup.GET("", metricsHandler.GetMetrics)
	metricsGroup.GET("/csv", metricsHandler.GetMetricsCSV)

	// Ingest routes
	ingestHandler := handlers.NewIngestHandler(db, cfg)
	ingestGroup := api.Group("/ingest")
	ingestGroup.POST("/run", ingestHandler.RunIngestion)
	ingestGroup.GET("/splits", ingestHandler.GetSplits)

}

// indexRoute sets up the index route for the API
func indexRoute(c echo.Context) error {
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	message := fmt.Sprintf("%s %s", cfg.APIName, cfg.APIVersion)
	return response.SuccessResponse(c, message)
}

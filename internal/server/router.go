package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/handlers"
	"github.com/socratia/socratia-backend/internal/middleware"
)

type RouterConfig struct {
	StrategyHandler   *handlers.StrategyHandler
	TelemetryHandler  *handlers.TelemetryHandler
	MetricsMiddleware *middleware.MetricsMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware.Track())
	}

	router.GET("/healthcheck", handlers.HealthCheck)
	if cfg.TelemetryHandler != nil {
		router.GET("/metrics", cfg.TelemetryHandler.Metrics)
	}

	api := router.Group("/api")
	{
		api.POST("/strategy/evaluate", cfg.StrategyHandler.Evaluate)
		api.GET("/strategy/rules", cfg.StrategyHandler.RuleStatistics)
		api.POST("/interactions", cfg.StrategyHandler.RecordInteraction)
		api.POST("/feedback", cfg.StrategyHandler.RecordFeedback)
	}

	return router
}

package api

import (
	"time"

	"github.com/RishiKendai/veritext/internal/config"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	cfg *config.Config,
	engine *plagiarism.Engine,
	workerPool *plagiarism.WorkerPool,
	jobs JobQueue,
	rateLimiter *RateLimiter,
) *gin.Engine {
	router := gin.New()

	handler := NewHandler(cfg, engine, workerPool, jobs)

	// Middleware
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware())
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	router.Use(ErrorHandlerMiddleware())

	// Health endpoints (no rate limiting)
	router.GET("/health", handler.Health)
	router.GET("/api/health", handler.Health)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compare", handler.Compare)
		api.POST("/compare/batch", handler.CompareBatch)
		api.POST("/jobs", handler.EnqueueJob)
		api.GET("/jobs/:id", handler.GetJob)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

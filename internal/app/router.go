package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"checkout/internal/handler"
	"checkout/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CheckoutHandler *handler.CheckoutHandler
	ProofHandler    *handler.ProofHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	Auth            middleware.AuthConfig
	IdempotencyTTL  time.Duration
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.IdempotencyTTL))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes, all behind bearer auth.
	v1 := router.Group("/v1")
	v1.Use(middleware.BearerAuth(deps.Auth))
	{
		checkout := v1.Group("/checkout")
		{
			checkout.POST("/orders/:orderId", deps.CheckoutHandler.Open)

			sessions := checkout.Group("/sessions")
			{
				sessions.GET("/:id", deps.CheckoutHandler.Get)
				sessions.PUT("/:id/method", deps.CheckoutHandler.SelectMethod)
				sessions.PUT("/:id/shipping", deps.CheckoutHandler.SelectShipping)
				sessions.PUT("/:id/card", deps.CheckoutHandler.SetCard)
				sessions.PUT("/:id/note", deps.CheckoutHandler.SetNote)
				sessions.POST("/:id/submit", deps.CheckoutHandler.Submit)
				sessions.POST("/:id/slip", deps.ProofHandler.UploadSlip)
				sessions.POST("/:id/refresh", deps.ProofHandler.Refresh)
				sessions.POST("/:id/back", deps.CheckoutHandler.Back)
				sessions.POST("/:id/retry", deps.CheckoutHandler.Retry)
				sessions.DELETE("/:id", deps.CheckoutHandler.Close)
			}
		}
	}

	return router
}

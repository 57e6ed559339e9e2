package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"checkout/internal/app"
	"checkout/internal/config"
	"checkout/internal/gateway"
	"checkout/internal/handler"
	"checkout/internal/logging"
	"checkout/internal/middleware"
	internalRedis "checkout/internal/redis"
	redisRepo "checkout/internal/repository/redis"
	"checkout/internal/service"
)

func main() {
	// Load configuration.
	cfg, err := config.Load(envOr("CHECKOUT_CONFIG_DIR", "./configs"), envOr("CHECKOUT_ENV", "dev"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Init("checkout", cfg.Log.File, parseLevel(cfg.Log.Level))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before Redis so we can instrument it).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", "err", err)
		} else {
			logger.Info("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis", "addr", cfg.Redis.Addr)

	// Wire dependencies.
	server := wireServer(redisClient, nrApp, cfg, logger)

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(redisClient *redis.Client, nrApp *newrelic.Application, cfg config.Config, logger *slog.Logger) *http.Server {
	// Stores.
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Checkout.SessionTTL)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Storefront backend client.
	storefront := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logging.New("gateway"))

	// Services.
	countdowns := service.NewCountdownRegistry()
	checkoutService := service.NewCheckoutService(sessionRepo, lockStore, storefront,
		countdowns, cfg.Checkout.ProofWindow, logging.New("checkout"))
	proofService := service.NewProofService(sessionRepo, lockStore, storefront,
		countdowns, cfg.Checkout.SlipMaxBytes, logging.New("proof"))

	// Handlers.
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, countdowns)
	proofHandler := handler.NewProofHandler(proofService, countdowns, cfg.Checkout.SlipMaxBytes)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		CheckoutHandler: checkoutHandler,
		ProofHandler:    proofHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		Auth: middleware.AuthConfig{
			Secret:   cfg.Security.JWTSecret,
			Issuer:   cfg.Security.Issuer,
			Audience: cfg.Security.Audience,
		},
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirewire/atsync/internal/api"
	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
	"github.com/hirewire/atsync/internal/service"
)

func main() {
	// Initialize logger first, driven by LOG_* / APP_ENV variables so
	// deployments get file output and rotation without code changes
	logCfg := logger.LoadFromEnv()
	logCfg.ServiceName = "atsync-api"
	appLogger := logger.NewFromEnv(logCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Credential sealing key is mandatory; connections are unusable without it
	box, err := secret.NewBox(cfg.Security.EncryptionKey)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize credential box")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	connRepo := repository.NewConnectionRepository(db)
	jobRepo := repository.NewJobPostingRepository(db)
	candRepo := repository.NewCandidateRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// Initialize services
	limiter := service.NewRateLimiter(syncLogRepo, cfg.Sync.DefaultHourlyLimit)
	connectionService := service.NewConnectionService(connRepo, box, &cfg.Sync)
	syncService := service.NewSyncService(connRepo, jobRepo, candRepo, appRepo, syncLogRepo, limiter, box, &cfg.Sync)
	webhookService := service.NewWebhookService(webhookRepo, connRepo, jobRepo, candRepo, appRepo)

	// Setup router
	router := api.SetupRouter(db, connectionService, syncService, webhookService, syncLogRepo, jobRepo, candRepo, appRepo, &cfg.Server, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Background sweep re-processes webhooks that were left pending
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runWebhookSweep(sweepCtx, webhookService, &cfg.Webhook)

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	stopSweep()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

// runWebhookSweep periodically drains pending webhook events and re-runs
// retryable failed ones until ctx is cancelled.
func runWebhookSweep(ctx context.Context, webhooks *service.WebhookService, cfg *config.WebhookConfig) {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	batch := cfg.SweepBatch
	if batch <= 0 {
		batch = 50
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := webhooks.ProcessPending(ctx, batch)
			if err != nil {
				logger.CtxError(ctx, "webhook sweep failed: %v", err)
				continue
			}
			recovered, err := webhooks.RetryFailed(ctx, batch)
			if err != nil {
				logger.CtxError(ctx, "webhook retry sweep failed: %v", err)
				continue
			}
			if processed > 0 || recovered > 0 {
				logger.CtxInfo(ctx, "webhook sweep processed %d pending, recovered %d failed events", processed, recovered)
			}
		}
	}
}

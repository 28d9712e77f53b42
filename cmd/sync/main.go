package main

import (
	"context"
	"flag"
	"os"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/provider"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
	"github.com/hirewire/atsync/internal/service"
)

func main() {
	// Initialize logger first, driven by LOG_* / APP_ENV variables
	logCfg := logger.LoadFromEnv()
	logCfg.ServiceName = "atsync-sync"
	appLogger := logger.NewFromEnv(logCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	connectionID := flag.String("connection", "", "Connection ID to sync")
	syncType := flag.String("type", "full", "Sync type: jobs, candidates, applications, full")
	location := flag.String("location", "", "Filter jobs by location")
	keywords := flag.String("keywords", "", "Filter by keywords")
	department := flag.String("department", "", "Filter jobs by department")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *connectionID == "" {
		appLogger.Error("-connection is required")
		flag.Usage()
		os.Exit(2)
	}

	st := domain.SyncType(*syncType)
	switch st {
	case domain.SyncTypeJobs, domain.SyncTypeCandidates, domain.SyncTypeApplications, domain.SyncTypeFull:
	default:
		appLogger.Errorf("invalid sync type %q", *syncType)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	box, err := secret.NewBox(cfg.Security.EncryptionKey)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize credential box")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories and services
	connRepo := repository.NewConnectionRepository(db)
	jobRepo := repository.NewJobPostingRepository(db)
	candRepo := repository.NewCandidateRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	limiter := service.NewRateLimiter(syncLogRepo, cfg.Sync.DefaultHourlyLimit)
	syncService := service.NewSyncService(connRepo, jobRepo, candRepo, appRepo, syncLogRepo, limiter, box, &cfg.Sync)

	filters := provider.Filters{
		Location:   *location,
		Keywords:   *keywords,
		Department: *department,
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldConnectionID: *connectionID,
		"sync_type":              *syncType,
	}).Info("Starting sync")

	result, err := syncService.Sync(context.Background(), *connectionID, st, filters)
	if err != nil {
		if result != nil {
			appLogger.WithFields(logger.Fields{
				logger.FieldSyncID: result.SyncLogID,
			}).WithError(err).Error("Sync finished with failure")
			os.Exit(1)
		}
		appLogger.WithError(err).Fatal("Sync failed to start")
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldSyncID: result.SyncLogID,
		logger.FieldStatus: string(result.Status),
	}).Info("Sync completed")
}

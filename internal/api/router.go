package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/api/handler"
	"github.com/hirewire/atsync/internal/api/middleware"
	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	db *gorm.DB,
	connections *service.ConnectionService,
	syncs *service.SyncService,
	webhooks *service.WebhookService,
	syncLogs *repository.SyncLogRepository,
	jobs *repository.JobPostingRepository,
	candidates *repository.CandidateRepository,
	apps *repository.ApplicationRepository,
	serverCfg *config.ServerConfig,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch serverCfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  serverCfg.CORS.AllowedOrigins,
		AllowAllOrigins: serverCfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(db)
	connectionHandler := handler.NewConnectionHandler(connections, syncs, syncLogs, jobs, candidates, apps)
	webhookHandler := handler.NewWebhookHandler(webhooks)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Provider-facing webhook ingress
	r.POST("/ats/:connection/webhook", webhookHandler.Receive)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Connections
		v1.POST("/connections", connectionHandler.Create)
		v1.GET("/connections", connectionHandler.List)
		v1.GET("/connections/:id", connectionHandler.Get)
		v1.PUT("/connections/:id", connectionHandler.Update)
		v1.DELETE("/connections/:id", connectionHandler.Delete)

		// Connection operations
		v1.POST("/connections/:id/test", connectionHandler.Test)
		v1.POST("/connections/:id/sync", connectionHandler.Sync)
		v1.GET("/connections/:id/logs", connectionHandler.Logs)

		// Webhooks
		v1.POST("/webhooks/:id/retry", webhookHandler.Retry)
	}

	return r
}

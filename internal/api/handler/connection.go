package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/provider"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/service"
)

// ConnectionHandler handles connection lifecycle and sync endpoints.
type ConnectionHandler struct {
	connections *service.ConnectionService
	syncs       *service.SyncService
	syncLogs    *repository.SyncLogRepository
	jobs        *repository.JobPostingRepository
	candidates  *repository.CandidateRepository
	apps        *repository.ApplicationRepository
}

// NewConnectionHandler creates a new connection handler.
// Parameters:
//   - connections: connection service instance.
//   - syncs: sync orchestration service.
//   - syncLogs: sync log repository for history queries.
//   - jobs, candidates, apps: entity repositories for record counts.
// Returns:
//   - *ConnectionHandler: initialized handler.
func NewConnectionHandler(
	connections *service.ConnectionService,
	syncs *service.SyncService,
	syncLogs *repository.SyncLogRepository,
	jobs *repository.JobPostingRepository,
	candidates *repository.CandidateRepository,
	apps *repository.ApplicationRepository,
) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		syncs:       syncs,
		syncLogs:    syncLogs,
		jobs:        jobs,
		candidates:  candidates,
		apps:        apps,
	}
}

// syncRequest is the body of POST /api/v1/connections/:id/sync.
type syncRequest struct {
	SyncType string `json:"sync_type"`
	Filters  struct {
		Location   string `json:"location"`
		Keywords   string `json:"keywords"`
		Department string `json:"department"`
	} `json:"filters"`
}

// Create handles POST /api/v1/connections.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ConnectionHandler) Create(c *gin.Context) {
	var input service.ConnectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	conn, err := h.connections.Create(c.Request.Context(), &input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUnknownProvider) || errors.Is(err, service.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// List handles GET /api/v1/connections.
func (h *ConnectionHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	conns, err := h.connections.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connections": conns,
		"count":       len(conns),
	})
}

// Get handles GET /api/v1/connections/:id.
func (h *ConnectionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	conn, err := h.connections.Get(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err)
		return
	}

	// Mirrored record counts ride along with the connection detail. A count
	// failure degrades to zero rather than failing the lookup.
	jobCount, _ := h.jobs.CountByConnection(ctx, conn.ID)
	candCount, _ := h.candidates.CountByConnection(ctx, conn.ID)
	appCount, _ := h.apps.CountByConnection(ctx, conn.ID)

	c.JSON(http.StatusOK, gin.H{
		"connection": conn,
		"records": gin.H{
			"jobs":         jobCount,
			"candidates":   candCount,
			"applications": appCount,
		},
	})
}

// Update handles PUT /api/v1/connections/:id.
func (h *ConnectionHandler) Update(c *gin.Context) {
	var input service.ConnectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	conn, err := h.connections.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conn)
}

// Delete handles DELETE /api/v1/connections/:id.
func (h *ConnectionHandler) Delete(c *gin.Context) {
	if err := h.connections.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Test handles POST /api/v1/connections/:id/test. Connectivity failures are a 200
// with success=false; only a missing connection is an error status.
func (h *ConnectionHandler) Test(c *gin.Context) {
	result, err := h.connections.Test(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sync handles POST /api/v1/connections/:id/sync.
func (h *ConnectionHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	syncType := domain.SyncType(req.SyncType)
	switch syncType {
	case domain.SyncTypeJobs, domain.SyncTypeCandidates, domain.SyncTypeApplications, domain.SyncTypeFull:
	case "":
		syncType = domain.SyncTypeFull
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sync_type: " + req.SyncType})
		return
	}

	filters := provider.Filters{
		Location:   req.Filters.Location,
		Keywords:   req.Filters.Keywords,
		Department: req.Filters.Department,
	}

	result, err := h.syncs.Sync(c.Request.Context(), c.Param("id"), syncType, filters)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
		case errors.Is(err, service.ErrInactiveConnection):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case result != nil:
			// Run finished but failed; the log id and errors are still useful.
			c.JSON(http.StatusBadGateway, result)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logs handles GET /api/v1/connections/:id/logs.
func (h *ConnectionHandler) Logs(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	logs, err := h.syncLogs.ListByConnection(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// respondLookupError maps a load failure to 404 or 500.
func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// queryInt parses an integer query parameter with a default.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/repository"
)

// Advisory per-provider ceilings on sync runs per trailing hour. These track
// published vendor API budgets loosely; the gate counts local run starts, not
// upstream request quotas.
var providerHourlyLimits = map[domain.Provider]int{
	domain.ProviderWorkday:        50,
	domain.ProviderGreenhouse:     100,
	domain.ProviderLever:          100,
	domain.ProviderBambooHR:       60,
	domain.ProviderSuccessFactors: 50,
	domain.ProviderTaleo:          40,
	domain.ProviderICIMS:          60,
	domain.ProviderJazzHR:         80,
	domain.ProviderBullhorn:       60,
	domain.ProviderJobvite:        60,
}

// RateLimiter gates sync starts per connection using the sync_logs table as
// its counter. Denied runs leave no trace in the log.
type RateLimiter struct {
	syncLogs     *repository.SyncLogRepository
	defaultLimit int
}

func NewRateLimiter(syncLogs *repository.SyncLogRepository, defaultLimit int) *RateLimiter {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &RateLimiter{syncLogs: syncLogs, defaultLimit: defaultLimit}
}

// Limit returns the hourly run ceiling for a provider.
func (r *RateLimiter) Limit(p domain.Provider) int {
	if limit, ok := providerHourlyLimits[p]; ok {
		return limit
	}
	return r.defaultLimit
}

// CanSync reports whether a new run may start for the connection. It returns
// false for inactive connections and for connections whose trailing-hour run
// count has reached the provider ceiling.
func (r *RateLimiter) CanSync(ctx context.Context, conn *domain.Connection) (bool, error) {
	if !conn.IsActive {
		return false, nil
	}

	since := time.Now().UTC().Add(-time.Hour)
	count, err := r.syncLogs.CountStartedSince(ctx, conn.ID, since)
	if err != nil {
		return false, fmt.Errorf("count recent runs: %w", err)
	}

	limit := r.Limit(conn.Provider)
	if count >= int64(limit) {
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldConnectionID: conn.ID,
			logger.FieldProvider:     string(conn.Provider),
			"runs_last_hour":         count,
			"limit":                  limit,
		}).Warn("sync denied, hourly limit reached")
		return false, nil
	}
	return true, nil
}

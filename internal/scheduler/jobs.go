package scheduler

import (
	"context"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	BlacklistPurgeSpec        = "@every 1m"
	NotificationRetentionSpec = "@daily"
)

// PurgeBlacklist drops revoked tokens that have expired anyway.
func PurgeBlacklist(bl *auth.MemoryBlacklist, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		if n := bl.Purge(time.Now()); n > 0 {
			log.Debug("purged blacklist entries", zap.Int("removed", n))
		}
		return nil
	}
}

// PruneNotifications deletes read notifications older than retention.
func PruneNotifications(repo repositories.NotificationRepository, retention time.Duration, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		removed, err := repo.DeleteReadBefore(time.Now().Add(-retention))
		if err != nil {
			return err
		}
		log.Info("pruned read notifications", zap.Int64("removed", removed))
		return nil
	}
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
)

const (
	jobCleanupBlacklist = "cleanup_token_blacklist"
	jobCleanupOldData   = "cleanup_old_data"
	jobWarmDirectory    = "warm_directory_cache"

	cronLogRetention      = 90 * 24 * time.Hour
	notificationRetention = 30 * 24 * time.Hour
)

// CleanupExpiredTokens removes blacklist entries whose tokens have expired
func (m *CronManager) CleanupExpiredTokens(ctx context.Context) (string, error) {
	if m.deps.Blacklist == nil {
		return "blacklist not configured", nil
	}
	removed, err := m.deps.Blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to clean token blacklist: %w", err)
	}
	return fmt.Sprintf("Removed %d expired tokens", removed), nil
}

// CleanupOldData prunes old cron logs and read notifications
func (m *CronManager) CleanupOldData(ctx context.Context) (string, error) {
	result := m.db.WithContext(ctx).
		Where("created_at < ?", time.Now().Add(-cronLogRetention)).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", fmt.Errorf("failed to prune cron logs: %w", result.Error)
	}
	logs := result.RowsAffected

	var notifications int64
	if m.deps.Notifications != nil {
		n, err := m.deps.Notifications.CleanupOldNotifications(ctx, notificationRetention)
		if err != nil {
			return "", fmt.Errorf("failed to prune notifications: %w", err)
		}
		notifications = n
	}

	return fmt.Sprintf("Removed %d cron logs and %d notifications", logs, notifications), nil
}

// WarmDirectoryCache rebuilds the cached public directory
func (m *CronManager) WarmDirectoryCache(ctx context.Context) (string, error) {
	count, err := m.deps.Directory.Refresh(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cached %d colleges", count), nil
}

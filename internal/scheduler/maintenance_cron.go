package scheduler

import (
	"context"
	"fmt"

	"github.com/pawsafety/pawsafety-backend/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Sweeper interface {
	RunSweep(ctx context.Context) (repaired, removed int, err error)
}

type NotificationCleaner interface {
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// StartMaintenanceCronJobs schedules the friendship reconciliation and the
// expired notification cleanup. The caller stops the returned cron.
func StartMaintenanceCronJobs(cfg *config.Config, notifications NotificationCleaner, reconciler Sweeper) (*cron.Cron, error) {
	c := cron.New()

	// Friendship reconciliation
	if _, err := c.AddFunc(cfg.ReconcileCron, func() {
		if _, _, err := reconciler.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Friendship reconciliation failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_CRON %q: %w", cfg.ReconcileCron, err)
	}

	// Expired notifications
	if _, err := c.AddFunc(cfg.CleanupCron, func() {
		deleted, err := notifications.DeleteExpiredNotifications(context.Background())
		if err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
			return
		}
		logrus.WithField("deleted", deleted).Info("Expired notifications removed")
	}); err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_CRON %q: %w", cfg.CleanupCron, err)
	}

	c.Start()
	return c, nil
}

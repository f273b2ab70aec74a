package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/KingJoefa/AFBParley-sub002/internal/store"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// CleanupJob deletes stale run snapshots. Runs are audit records, not
// a permanent archive.
type CleanupJob struct {
	runs      *store.RunRepository
	retention time.Duration
	logger    *logger.Logger
}

// NewCleanupJob creates a new cleanup job.
func NewCleanupJob(runs *store.RunRepository, retention time.Duration, log *logger.Logger) *CleanupJob {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &CleanupJob{
		runs:      runs,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *CleanupJob) Name() string {
	return "run_cleanup"
}

// Schedule returns the cron schedule (every day at 3 AM)
func (j *CleanupJob) Schedule() string {
	return "0 0 3 * * *" // 3 AM daily (with seconds)
}

// Run deletes runs older than the retention window.
func (j *CleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.runs.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete old runs: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff,
	}).Info("Run cleanup finished")

	return nil
}

package jobs

import (
	"context"
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/external/schedule"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// ScheduleRefreshJob refreshes the cached weekly slate so analyze
// requests resolve matchups without a live scrape.
type ScheduleRefreshJob struct {
	client *schedule.Client
	cache  *redispkg.Cache
	logger *logger.Logger
}

// NewScheduleRefreshJob creates a new schedule refresh job.
func NewScheduleRefreshJob(client *schedule.Client, cache *redispkg.Cache, log *logger.Logger) *ScheduleRefreshJob {
	return &ScheduleRefreshJob{
		client: client,
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *ScheduleRefreshJob) Name() string {
	return "schedule_refresh"
}

// Schedule returns the cron schedule (every day at 6 AM)
func (j *ScheduleRefreshJob) Schedule() string {
	return "0 0 6 * * *" // 6 AM daily (with seconds)
}

// Run fetches the current week and caches it.
func (j *ScheduleRefreshJob) Run(ctx context.Context) error {
	season, week := j.client.Fallback()

	games, err := j.client.FetchWeek(ctx, season, week)
	if err != nil {
		return fmt.Errorf("fetch week %d/%d: %w", season, week, err)
	}

	if err := j.cache.Set(ctx, redispkg.ScheduleKey(season, week), games, redispkg.TTLDaily); err != nil {
		return fmt.Errorf("cache schedule: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"season": season,
		"week":   week,
		"games":  len(games),
	}).Info("Schedule refreshed")

	return nil
}

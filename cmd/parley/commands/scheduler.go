package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KingJoefa/AFBParley-sub002/internal/external/schedule"
	"github.com/KingJoefa/AFBParley-sub002/internal/scheduler"
	"github.com/KingJoefa/AFBParley-sub002/internal/scheduler/jobs"
	"github.com/KingJoefa/AFBParley-sub002/internal/store"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/database"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the background job scheduler",
	Long: `Starts the cron scheduler.

Jobs:
  schedule_refresh - refresh the cached weekly slate (6 AM daily)
  run_cleanup      - delete stale run snapshots (3 AM daily)

Example:
  go run ./cmd/parley scheduler`,
	RunE: runScheduler,
}

var retentionDays int

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().IntVar(&retentionDays, "retention-days", 30, "run snapshot retention in days")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AFB Parley Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	httpClient := httputil.New(cfg, log)

	redisClient, err := redispkg.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redispkg.NewCache(redisClient, "parley")

	sched := scheduler.New(log)

	scheduleClient := schedule.NewClient(cfg, httpClient, log)
	if err := sched.AddJob(jobs.NewScheduleRefreshJob(scheduleClient, cache, log)); err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		runRepo := store.NewRunRepository(db.Pool)
		retention := time.Duration(retentionDays) * 24 * time.Hour
		if err := sched.AddJob(jobs.NewCleanupJob(runRepo, retention, log)); err != nil {
			return err
		}
	} else {
		log.Warn("DATABASE_URL not set, run cleanup job disabled")
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println("\nScheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KingJoefa/AFBParley-sub002/internal/api"
	"github.com/KingJoefa/AFBParley-sub002/internal/api/handlers"
	"github.com/KingJoefa/AFBParley-sub002/internal/external/schedule"
	"github.com/KingJoefa/AFBParley-sub002/internal/generator"
	"github.com/KingJoefa/AFBParley-sub002/internal/pipeline"
	"github.com/KingJoefa/AFBParley-sub002/internal/profile"
	"github.com/KingJoefa/AFBParley-sub002/internal/realtime"
	"github.com/KingJoefa/AFBParley-sub002/internal/store"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/database"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                 - Health check
  POST /api/analyze            - Run the analysis pipeline for a matchup
  GET  /api/memory/{profile}   - Read profile memory
  PUT  /api/memory/{profile}   - Replace profile memory
  GET  /api/runs/{id}          - Fetch a persisted run snapshot
  GET  /api/schedule           - Weekly slate (cached)
  GET  /ws                     - Run-completed event stream

Example:
  go run ./cmd/parley api
  go run ./cmd/parley api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AFB Parley API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Load ruleset
	rs, err := loadRuleSet(cfg, log)
	if err != nil {
		return err
	}

	// 4. Connect to database (optional: runs are only persisted when
	// DATABASE_URL is set)
	var runRepo *store.RunRepository
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		runRepo = store.NewRunRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, run persistence disabled")
	}

	// 5. Connect to Redis (optional)
	redisClient, err := redispkg.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	responseCache := redispkg.NewCache(redisClient, "parley")

	// 6. Create HTTP client, generator, and schedule source
	httpClient := httputil.New(cfg, log)
	genClient := generator.NewClient(cfg, httpClient, log).
		WithRateLimiter(redispkg.NewRateLimiter(redisClient, "parley"))
	scheduleClient := schedule.NewClient(cfg, httpClient, log)

	// 7. Create profile memory store
	profiles := profile.NewMemoryStore(cfg.Profile.MaxProfiles, cfg.Profile.MaxBytes, log)

	// 8. Create pipeline orchestrator
	orch, err := pipeline.New(rs, profiles, genClient, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	// 9. Create realtime hub
	hub := realtime.NewHub(log)

	// 10. Create handlers and router
	analyzeHandler := handlers.NewAnalyzeHandler(orch, runRepo, hub, responseCache, log)
	memoryHandler := handlers.NewMemoryHandler(profiles, log)
	runsHandler := handlers.NewRunsHandler(runRepo, responseCache, log)
	scheduleHandler := handlers.NewScheduleHandler(scheduleClient, responseCache, log)

	router := api.NewRouter(analyzeHandler, memoryHandler, runsHandler, scheduleHandler, hub, log)

	// 11. Create server
	server := api.New(cfg, log, router)

	// 12. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/analyze")
	fmt.Println("  GET  /api/memory/{profile}")
	fmt.Println("  PUT  /api/memory/{profile}")
	fmt.Println("  GET  /api/runs/{id}")
	fmt.Println("  GET  /api/schedule")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown(ctx)
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

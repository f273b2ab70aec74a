package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/generator"
	"github.com/KingJoefa/AFBParley-sub002/internal/pipeline"
	"github.com/KingJoefa/AFBParley-sub002/internal/profile"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// analyzeCmd runs the pipeline once from the command line.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one matchup analysis and print the result",
	Long: `Runs the full pipeline for one matchup and prints the run
record as JSON.

The stats file carries the same matchup stats block the API accepts:
home/away team sides plus an optional weather forecast.

Example:
  go run ./cmd/parley analyze --stats game.json --home "Buffalo Bills" --away "Miami Dolphins"`,
	RunE: runAnalyze,
}

var (
	analyzeStatsFile string
	analyzeHome      string
	analyzeAway      string
	analyzeProfile   string
	analyzeMode      string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeStatsFile, "stats", "", "path to matchup stats JSON (required)")
	analyzeCmd.Flags().StringVar(&analyzeHome, "home", "", "home team (required)")
	analyzeCmd.Flags().StringVar(&analyzeAway, "away", "", "away team (required)")
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", profile.DefaultProfile, "profile memory key")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", pipeline.ModeDeterministic, "deterministic|generated")
	analyzeCmd.MarkFlagRequired("stats")
	analyzeCmd.MarkFlagRequired("home")
	analyzeCmd.MarkFlagRequired("away")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	rs, err := loadRuleSet(cfg, log)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(analyzeStatsFile)
	if err != nil {
		return fmt.Errorf("read stats file: %w", err)
	}
	var stats contracts.MatchupStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return fmt.Errorf("parse stats file: %w", err)
	}

	// Generated runs share the model call budget with the API server
	// when redis is enabled.
	redisClient, err := redispkg.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	httpClient := httputil.New(cfg, log)
	genClient := generator.NewClient(cfg, httpClient, log).
		WithRateLimiter(redispkg.NewRateLimiter(redisClient, "parley"))
	profiles := profile.NewMemoryStore(cfg.Profile.MaxProfiles, cfg.Profile.MaxBytes, log)

	orch, err := pipeline.New(rs, profiles, genClient, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := orch.Run(ctx, pipeline.Request{
		Matchup: contracts.Matchup{Home: analyzeHome, Away: analyzeAway},
		Stats:   &stats,
		Profile: analyzeProfile,
		Mode:    analyzeMode,
		RunContext: contracts.RunContext{
			DataTimestamp: time.Now().Unix(),
			DataVersion:   "cli",
		},
	})
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Record)
}

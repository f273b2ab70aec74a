package commands

import (
	"fmt"
	"os"

	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// loadRuleSet loads the configured ruleset file, falling back to the
// built-in defaults when no file is present. A present-but-invalid
// file is a hard error: silently shipping default thresholds under a
// customized path would be worse than refusing to start.
func loadRuleSet(cfg *config.Config, log *logger.Logger) (*ruleset.RuleSet, error) {
	path := cfg.RulesetPath
	if path == "" {
		return ruleset.Default(), nil
	}

	if _, err := os.Stat(path); err != nil {
		log.WithField("path", path).Warn("Ruleset file not found, using built-in defaults")
		return ruleset.Default(), nil
	}

	rs, err := ruleset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load ruleset %s: %w", path, err)
	}

	log.WithFields(map[string]interface{}{
		"path":    path,
		"ruleset": rs.Meta.RulesetID,
		"version": rs.Meta.Version,
	}).Info("Ruleset loaded")

	return rs, nil
}

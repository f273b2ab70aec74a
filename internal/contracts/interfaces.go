package contracts

import (
	"context"
	"time"
)

// Detector is the signal contract: one fixed-threshold detector per agent.
// Detect is synchronous, finite, and restartable; it returns zero findings
// (never an error) when the subject fails its minimum-sample gate.
type Detector interface {
	Agent() AgentID
	Detect(m *MatchupStats, rc RunContext) []Finding
}

// AlertAggregator merges findings into per-(agent,subject) alerts.
type AlertAggregator interface {
	Aggregate(findings []Finding) []Alert
}

// ScriptBuilder groups alerts into correlated script candidates. An
// empty result is a valid outcome, not an error.
type ScriptBuilder interface {
	Build(alerts []Alert) []Script
}

// LadderBuilder classifies alerts into risk-tiered ladders.
type LadderBuilder interface {
	Build(alerts []Alert) []Ladder
}

// ProfileStore is the bounded shared cache for per-user preference state.
// Implementations are safe for concurrent use; eviction is silent.
type ProfileStore interface {
	Get(profile string) map[string]any
	Set(profile string, value any) map[string]any
}

// RunRepository persists completed run snapshots for audit.
type RunRepository interface {
	Save(ctx context.Context, rec *RunRecord) error
	Get(ctx context.Context, requestID string) (*RunRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

package contracts

import "fmt"

// Tier names the risk band of a ladder.
type Tier string

const (
	TierSafe       Tier = "safe"
	TierModerate   Tier = "moderate"
	TierAggressive Tier = "aggressive"
)

// Ladder rung count bounds.
const (
	MinLadderRungs = 1
	MaxLadderRungs = 5
)

// Rung is a single-alert prop bet inside a ladder.
type Rung struct {
	AlertID            string   `json:"alert_id"`
	Market             string   `json:"market"`
	Selection          string   `json:"selection"`
	ImpliedProbability *float64 `json:"implied_probability,omitempty"` // [0,1]
}

// Ladder groups rungs that share a risk tier.
type Ladder struct {
	Tier               Tier     `json:"tier"`
	Rungs              []Rung   `json:"rungs"`
	ImpliedProbability *float64 `json:"implied_probability,omitempty"` // aggregate, [0,1]
	BankrollPct        *float64 `json:"bankroll_pct,omitempty"`
	ProvenanceHash     string   `json:"provenance_hash"`
}

// Validate enforces the structural invariants of a finished ladder.
func (l *Ladder) Validate() error {
	if len(l.Rungs) < MinLadderRungs || len(l.Rungs) > MaxLadderRungs {
		return fmt.Errorf("ladder must have %d-%d rungs, got %d", MinLadderRungs, MaxLadderRungs, len(l.Rungs))
	}
	switch l.Tier {
	case TierSafe, TierModerate, TierAggressive:
	default:
		return fmt.Errorf("unknown tier %q", l.Tier)
	}
	if p := l.ImpliedProbability; p != nil && (*p < 0 || *p > 1) {
		return fmt.Errorf("implied_probability %f outside [0,1]", *p)
	}
	for i, r := range l.Rungs {
		if r.AlertID == "" {
			return fmt.Errorf("rung %d missing alert reference", i)
		}
		if p := r.ImpliedProbability; p != nil && (*p < 0 || *p > 1) {
			return fmt.Errorf("rung %d implied_probability %f outside [0,1]", i, *p)
		}
	}
	return nil
}

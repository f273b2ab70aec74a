package agents

import (
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// QBDetector compares the starting quarterbacks. All comparisons are
// strict inequalities: a value exactly at a threshold does not qualify.
type QBDetector struct {
	rules ruleset.QBRules
}

// NewQBDetector creates a new quarterback detector.
func NewQBDetector(rs *ruleset.RuleSet) *QBDetector {
	return &QBDetector{rules: rs.Signals.QB}
}

// Agent returns the detector's agent id.
func (d *QBDetector) Agent() contracts.AgentID { return contracts.AgentQB }

// Detect evaluates both quarterbacks, each against the other.
func (d *QBDetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	out = append(out, d.detectSide(m.Home, m.Away, rc)...)
	out = append(out, d.detectSide(m.Away, m.Home, rc)...)
	return out
}

func (d *QBDetector) detectSide(subject, opponent contracts.TeamSide, rc contracts.RunContext) []contracts.Finding {
	qb := subject.QB

	// Minimum-sample gate: too few attempts suppresses every finding
	// for this subject.
	if qb.Attempts < d.rules.MinAttempts {
		return nil
	}

	var out []contracts.Finding

	if diff := qb.Rating - opponent.QB.Rating; diff > d.rules.RatingAdvantage.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentQB, "qb_rating_advantage", qb.Player, diff,
			fmt.Sprintf("passer rating %.1f vs %.1f for %s", qb.Rating, opponent.QB.Rating, opponent.QB.Player),
			rc))
	}

	if diff := qb.YardsPerAttempt - opponent.QB.YardsPerAttempt; diff > d.rules.YPAAdvantage.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentQB, "qb_ypa_advantage", qb.Player, diff,
			fmt.Sprintf("%.1f yards/attempt vs %.1f for %s", qb.YardsPerAttempt, opponent.QB.YardsPerAttempt, opponent.QB.Player),
			rc))
	}

	return out
}

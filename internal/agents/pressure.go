package agents

import (
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// PressureDetector flags pass rushes that can tilt a game. Subjects are
// defenses.
type PressureDetector struct {
	rules ruleset.PressureRules
}

// NewPressureDetector creates a new pass-rush detector.
func NewPressureDetector(rs *ruleset.RuleSet) *PressureDetector {
	return &PressureDetector{rules: rs.Signals.Pressure}
}

// Agent returns the detector's agent id.
func (d *PressureDetector) Agent() contracts.AgentID { return contracts.AgentPressure }

// Detect evaluates both defenses.
func (d *PressureDetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	out = append(out, d.detectSide(m.Home, rc)...)
	out = append(out, d.detectSide(m.Away, rc)...)
	return out
}

func (d *PressureDetector) detectSide(side contracts.TeamSide, rc contracts.RunContext) []contracts.Finding {
	def := side.Defense

	// Sample gate on pass-rush snaps.
	if def.PassRushSnaps < d.rules.MinPassRushSnaps {
		return nil
	}

	var out []contracts.Finding

	if def.PressureRate > d.rules.PressureRate.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentPressure, "pressure_rate_edge", side.Team, def.PressureRate,
			fmt.Sprintf("%.0f%% pressure rate over %d pass-rush snaps, %d sacks", def.PressureRate*100, def.PassRushSnaps, def.Sacks),
			rc))
	}

	if def.BlitzRate > d.rules.BlitzRate.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentPressure, "pressure_blitz_rate", side.Team, def.BlitzRate,
			fmt.Sprintf("%.0f%% blitz rate", def.BlitzRate*100),
			rc))
	}

	return out
}

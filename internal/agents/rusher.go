package agents

import (
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// RusherDetector flags workhorse backs and efficiency edges.
type RusherDetector struct {
	rules ruleset.RusherRules
}

// NewRusherDetector creates a new halfback detector.
func NewRusherDetector(rs *ruleset.RuleSet) *RusherDetector {
	return &RusherDetector{rules: rs.Signals.HB}
}

// Agent returns the detector's agent id.
func (d *RusherDetector) Agent() contracts.AgentID { return contracts.AgentHB }

// Detect evaluates every back on both teams.
func (d *RusherDetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	out = append(out, d.detectSide(m.Home, rc)...)
	out = append(out, d.detectSide(m.Away, rc)...)
	return out
}

func (d *RusherDetector) detectSide(side contracts.TeamSide, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	for _, back := range side.Backs {
		// Sample gate on carries.
		if back.Carries < d.rules.MinCarries {
			continue
		}

		if back.RushShare > d.rules.RushShare.Threshold {
			out = append(out, contracts.NumFinding(
				contracts.AgentHB, "hb_rush_share", back.Player, back.RushShare,
				fmt.Sprintf("%.0f%% of %s carries", back.RushShare*100, side.Team),
				rc))
		}

		if back.YardsPerCarry > d.rules.YPC.Threshold {
			out = append(out, contracts.NumFinding(
				contracts.AgentHB, "hb_ypc_edge", back.Player, back.YardsPerCarry,
				fmt.Sprintf("%.1f yards/carry on %d carries", back.YardsPerCarry, back.Carries),
				rc))
		}
	}
	return out
}

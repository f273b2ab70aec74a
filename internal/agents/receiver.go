package agents

import (
	"fmt"
	"strings"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// ReceiverDetector covers both the wr and te agents; the position field
// on each stat line decides which agent reads it.
type ReceiverDetector struct {
	agent contracts.AgentID
	rules ruleset.ReceiverRules
}

// NewReceiverDetector creates a receiver detector for AgentWR or AgentTE.
func NewReceiverDetector(agent contracts.AgentID, rs *ruleset.RuleSet) *ReceiverDetector {
	rules := rs.Signals.WR
	if agent == contracts.AgentTE {
		rules = rs.Signals.TE
	}
	return &ReceiverDetector{agent: agent, rules: rules}
}

// Agent returns the detector's agent id.
func (d *ReceiverDetector) Agent() contracts.AgentID { return d.agent }

// Detect evaluates every receiver of the detector's position on both teams.
func (d *ReceiverDetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	out = append(out, d.detectSide(m.Home, rc)...)
	out = append(out, d.detectSide(m.Away, rc)...)
	return out
}

func (d *ReceiverDetector) detectSide(side contracts.TeamSide, rc contracts.RunContext) []contracts.Finding {
	position := "WR"
	if d.agent == contracts.AgentTE {
		position = "TE"
	}

	var out []contracts.Finding
	for _, rec := range side.Receivers {
		if !strings.EqualFold(rec.Position, position) {
			continue
		}
		// Sample gate on routes run.
		if rec.Routes < d.rules.MinRoutes {
			continue
		}

		prefix := strings.ToLower(position)

		if rec.TargetShare > d.rules.TargetShare.Threshold {
			out = append(out, contracts.NumFinding(
				d.agent, prefix+"_target_share", rec.Player, rec.TargetShare,
				fmt.Sprintf("%.0f%% target share over %d routes for %s", rec.TargetShare*100, rec.Routes, side.Team),
				rc))
		}

		if rec.YardsPerRouteRun > d.rules.YPRR.Threshold {
			out = append(out, contracts.NumFinding(
				d.agent, prefix+"_yprr_edge", rec.Player, rec.YardsPerRouteRun,
				fmt.Sprintf("%.2f yards/route run over %d routes", rec.YardsPerRouteRun, rec.Routes),
				rc))
		}
	}

	return out
}

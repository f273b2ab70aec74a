package agents

import (
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// EPADetector compares team-level efficiency. Subjects are teams, not
// players.
type EPADetector struct {
	rules ruleset.EPARules
}

// NewEPADetector creates a new efficiency detector.
func NewEPADetector(rs *ruleset.RuleSet) *EPADetector {
	return &EPADetector{rules: rs.Signals.EPA}
}

// Agent returns the detector's agent id.
func (d *EPADetector) Agent() contracts.AgentID { return contracts.AgentEPA }

// Detect evaluates both offenses, each against the other.
func (d *EPADetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	var out []contracts.Finding
	out = append(out, d.detectSide(m.Home, m.Away, rc)...)
	out = append(out, d.detectSide(m.Away, m.Home, rc)...)
	return out
}

func (d *EPADetector) detectSide(subject, opponent contracts.TeamSide, rc contracts.RunContext) []contracts.Finding {
	off := subject.Offense

	// Sample gate on offensive plays.
	if off.Plays < d.rules.MinPlays {
		return nil
	}

	var out []contracts.Finding

	if diff := off.EPAPerPlay - opponent.Offense.EPAPerPlay; diff > d.rules.EPAAdvantage.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentEPA, "epa_offense_advantage", subject.Team, diff,
			fmt.Sprintf("%.3f EPA/play vs %.3f for %s", off.EPAPerPlay, opponent.Offense.EPAPerPlay, opponent.Team),
			rc))
	}

	if off.PassRate > d.rules.PassLean.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentEPA, "epa_pass_lean", subject.Team, off.PassRate,
			fmt.Sprintf("%.0f%% pass rate over %d plays", off.PassRate*100, off.Plays),
			rc))
	}

	return out
}

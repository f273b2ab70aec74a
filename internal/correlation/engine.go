package correlation

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/provenance"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Explanations are fixed per rule so identical alert sets always render
// identical scripts.
const (
	explainWeatherCascade  = "Adverse weather suppresses the passing game; game total and passing props move together."
	explainDefensiveFunnel = "A disruptive pass rush degrades quarterback efficiency; sacks and passing unders correlate."
	explainVolumeShare     = "Receiver target shares compete for the same pass attempts; these props pull against each other."
	explainGameScript      = "An efficiency edge forces the trailing side to throw while the leader feeds its back."
)

// Engine evaluates the fixed correlation rules against one run's
// alerts. Every rule is evaluated on every run; rules are not mutually
// exclusive, so one alert may anchor several candidate scripts.
type Engine struct {
	rules  ruleset.Correlation
	meta   ruleset.Meta
	logger *logger.Logger
}

// NewEngine creates a correlation engine bound to one ruleset.
func NewEngine(rs *ruleset.RuleSet, log *logger.Logger) *Engine {
	return &Engine{rules: rs.Correlation, meta: rs.Meta, logger: log}
}

// Build evaluates all rules and selects the final scripts. Returns an
// empty slice when no rule fires; that is a valid outcome, not an
// error.
func (e *Engine) Build(alerts []contracts.Alert) []contracts.Script {
	byAgent := make(map[contracts.AgentID][]contracts.Alert, len(alerts))
	for _, a := range alerts {
		byAgent[a.Agent] = append(byAgent[a.Agent], a)
	}

	var candidates []contracts.Script
	for _, rule := range []func(map[contracts.AgentID][]contracts.Alert) *contracts.Script{
		e.weatherCascade,
		e.defensiveFunnel,
		e.volumeShare,
		e.gameScript,
	} {
		if s := rule(byAgent); s != nil {
			candidates = append(candidates, *s)
		}
	}

	selected := e.selectScripts(candidates)

	e.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"selected":   len(selected),
	}).Debug("Correlation pass complete")

	return selected
}

// weatherCascade pairs weather alerts with the passing game: every
// weather alert plus up to two passing-game alerts (QB, WR, TE).
func (e *Engine) weatherCascade(byAgent map[contracts.AgentID][]contracts.Alert) *contracts.Script {
	weather := byAgent[contracts.AgentWeather]
	passing := topN(concat(
		byAgent[contracts.AgentQB],
		byAgent[contracts.AgentWR],
		byAgent[contracts.AgentTE],
	), 2)

	if len(weather) == 0 || len(passing) == 0 {
		return nil
	}

	return e.script(
		contracts.CorrelationWeatherCascade,
		explainWeatherCascade,
		e.rules.Factors.WeatherCascade,
		concat(weather, passing),
	)
}

// defensiveFunnel pairs every pressure alert with every QB alert.
func (e *Engine) defensiveFunnel(byAgent map[contracts.AgentID][]contracts.Alert) *contracts.Script {
	pressure := byAgent[contracts.AgentPressure]
	qb := byAgent[contracts.AgentQB]

	if len(pressure) == 0 || len(qb) == 0 {
		return nil
	}

	return e.script(
		contracts.CorrelationDefensiveFunnel,
		explainDefensiveFunnel,
		e.rules.Factors.DefensiveFunnel,
		concat(pressure, qb),
	)
}

// volumeShare groups competing receiver alerts. The factor is negative:
// the rule exists to surface props that fight each other.
func (e *Engine) volumeShare(byAgent map[contracts.AgentID][]contracts.Alert) *contracts.Script {
	wr := byAgent[contracts.AgentWR]
	if len(wr) < 2 {
		return nil
	}

	return e.script(
		contracts.CorrelationVolumeShare,
		explainVolumeShare,
		e.rules.Factors.VolumeShare,
		topN(wr, 3),
	)
}

// gameScript pairs efficiency edges with ground-game volume: up to two
// EPA alerts and up to two halfback alerts.
func (e *Engine) gameScript(byAgent map[contracts.AgentID][]contracts.Alert) *contracts.Script {
	epa := byAgent[contracts.AgentEPA]
	hb := byAgent[contracts.AgentHB]

	if len(epa) == 0 || len(hb) == 0 {
		return nil
	}

	return e.script(
		contracts.CorrelationGameScript,
		explainGameScript,
		e.rules.Factors.GameScript,
		concat(topN(epa, 2), topN(hb, 2)),
	)
}

// script assembles a candidate from its member alerts. Legs past the
// maximum are trimmed from the tail; member order already puts the
// anchoring alerts first.
func (e *Engine) script(ct contracts.CorrelationType, explanation string, factor float64, members []contracts.Alert) *contracts.Script {
	if len(members) > contracts.MaxScriptLegs {
		members = members[:contracts.MaxScriptLegs]
	}
	if len(members) < contracts.MinScriptLegs {
		return nil
	}

	legs := make([]contracts.Leg, 0, len(members))
	confs := make([]float64, 0, len(members))
	for _, a := range members {
		f := factor
		legs = append(legs, contracts.Leg{
			AlertID:           a.ID,
			Agent:             a.Agent,
			Market:            a.Market,
			Selection:         selectionFor(a.Agent),
			CorrelationFactor: &f,
		})
		confs = append(confs, a.Confidence)
	}

	combined := combinedConfidence(confs)

	s := &contracts.Script{
		Legs:               legs,
		CorrelationType:    ct,
		Explanation:        explanation,
		CombinedConfidence: combined,
		RiskLevel:          riskFor(combined),
	}
	s.ProvenanceHash = provenance.HashArtifact(s.AlertIDs(), e.meta.RulesetID, e.meta.Version)
	return s
}

// combinedConfidence is the geometric mean of member confidences: one
// weak leg drags the whole script down, which is what a parlay deserves.
func combinedConfidence(confs []float64) float64 {
	m, err := stats.GeometricMean(confs)
	if err != nil {
		return 0
	}
	if m > 1 {
		m = 1
	}
	if m < 0 {
		m = 0
	}
	return m
}

func riskFor(combined float64) contracts.RiskLevel {
	switch {
	case combined >= 0.7:
		return contracts.RiskConservative
	case combined >= 0.5:
		return contracts.RiskModerate
	default:
		return contracts.RiskAggressive
	}
}

// selectionFor gives the deterministic lean per agent. Weather edges
// point the game total down; every other agent's edge points its
// subject's market up.
func selectionFor(agent contracts.AgentID) string {
	if agent == contracts.AgentWeather {
		return "Under"
	}
	return "Over"
}

// topN returns the n highest-confidence alerts, input order breaking
// ties, without mutating the input.
func topN(alerts []contracts.Alert, n int) []contracts.Alert {
	sorted := make([]contracts.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func concat(groups ...[]contracts.Alert) []contracts.Alert {
	var out []contracts.Alert
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

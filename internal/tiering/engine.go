package tiering

import (
	"github.com/montanaflynn/stats"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/provenance"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Engine sorts alerts into risk-tiered ladders. Tiers fill in order
// (safe, then moderate, then aggressive) and each pass takes eligible
// ids in input order up to the tier's cap. An id lands in at most one
// tier: once assigned it is excluded from later passes.
type Engine struct {
	tiers  ruleset.Tiers
	meta   ruleset.Meta
	logger *logger.Logger
}

// NewEngine creates a tiering engine bound to one ruleset.
func NewEngine(rs *ruleset.RuleSet, log *logger.Logger) *Engine {
	return &Engine{tiers: rs.Tiers, meta: rs.Meta, logger: log}
}

// Assign runs the ordered passes over bare ids. Ids absent from the
// confidence map tier as zero confidence. Band boundaries are
// inclusive at the bottom: 0.7 is safe, 0.5 moderate, 0.3 aggressive,
// anything below joins nothing. Empty tiers are omitted from the
// result.
func (e *Engine) Assign(ids []string, conf map[string]float64, sev map[string]contracts.Severity) map[contracts.Tier][]string {
	assigned := make(map[string]bool)
	out := make(map[contracts.Tier][]string)

	for _, p := range e.passes() {
		limit := p.rule.Cap
		if limit > contracts.MaxLadderRungs {
			limit = contracts.MaxLadderRungs
		}

		var members []string
		for _, id := range ids {
			if assigned[id] {
				continue
			}
			if !p.accept(conf[id], sev[id]) {
				continue
			}
			members = append(members, id)
			if len(members) == limit {
				break
			}
		}
		for _, id := range members {
			assigned[id] = true
		}
		if len(members) > 0 {
			out[p.tier] = members
		}
	}
	return out
}

// Build returns the non-empty ladders in tier order.
func (e *Engine) Build(alerts []contracts.Alert) []contracts.Ladder {
	ids := make([]string, 0, len(alerts))
	conf := make(map[string]float64, len(alerts))
	sev := make(map[string]contracts.Severity, len(alerts))
	byID := make(map[string]contracts.Alert, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
		conf[a.ID] = a.Confidence
		sev[a.ID] = a.Severity
		byID[a.ID] = a
	}

	tiers := e.Assign(ids, conf, sev)

	out := make([]contracts.Ladder, 0, len(tiers))
	for _, p := range e.passes() {
		members, ok := tiers[p.tier]
		if !ok {
			continue
		}
		out = append(out, e.ladder(p.tier, p.rule, members, byID))
	}

	e.logger.WithFields(map[string]interface{}{
		"alerts":  len(alerts),
		"ladders": len(out),
	}).Debug("Tiering pass complete")

	return out
}

type tierPass struct {
	tier   contracts.Tier
	rule   ruleset.TierRule
	accept func(conf float64, sev contracts.Severity) bool
}

func (e *Engine) passes() []tierPass {
	return []tierPass{
		{
			tier: contracts.TierSafe,
			rule: e.tiers.Safe,
			accept: func(c float64, s contracts.Severity) bool {
				return c >= e.tiers.Safe.MinConfidence && s == contracts.SeverityHigh
			},
		},
		{
			tier: contracts.TierModerate,
			rule: e.tiers.Moderate,
			accept: func(c float64, s contracts.Severity) bool {
				inBand := c >= e.tiers.Moderate.MinConfidence && c < e.tiers.Safe.MinConfidence
				return inBand || s == contracts.SeverityMedium
			},
		},
		{
			tier: contracts.TierAggressive,
			rule: e.tiers.Aggressive,
			accept: func(c float64, s contracts.Severity) bool {
				return c >= e.tiers.Aggressive.MinConfidence && c < e.tiers.Moderate.MinConfidence
			},
		},
	}
}

func (e *Engine) ladder(tier contracts.Tier, rule ruleset.TierRule, memberIDs []string, byID map[string]contracts.Alert) contracts.Ladder {
	rungs := make([]contracts.Rung, 0, len(memberIDs))
	confs := make([]float64, 0, len(memberIDs))

	for _, id := range memberIDs {
		a := byID[id]
		p := a.Confidence
		rungs = append(rungs, contracts.Rung{
			AlertID:            id,
			Market:             a.Market,
			Selection:          selectionFor(a.Agent),
			ImpliedProbability: &p,
		})
		confs = append(confs, a.Confidence)
	}

	// Geometric mean: the ladder's implied probability behaves like the
	// rungs parlayed together rather than averaged.
	implied, err := stats.GeometricMean(confs)
	if err != nil {
		implied = 0
	}

	bankroll := rule.BankrollPct
	return contracts.Ladder{
		Tier:               tier,
		Rungs:              rungs,
		ImpliedProbability: &implied,
		BankrollPct:        &bankroll,
		ProvenanceHash:     provenance.HashArtifact(memberIDs, e.meta.RulesetID, e.meta.Version),
	}
}

// selectionFor mirrors the correlation engine's deterministic lean.
func selectionFor(agent contracts.AgentID) string {
	if agent == contracts.AgentWeather {
		return "Under"
	}
	return "Over"
}

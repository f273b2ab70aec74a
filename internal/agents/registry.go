package agents

import (
	"context"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Registry owns the fixed detector set and runs it in declaration order.
// Alert ordering downstream reflects this order, so it never changes
// between runs.
type Registry struct {
	detectors []contracts.Detector
	logger    *logger.Logger
}

// NewRegistry wires every detector against one ruleset.
func NewRegistry(rs *ruleset.RuleSet, log *logger.Logger) *Registry {
	return &Registry{
		detectors: []contracts.Detector{
			NewQBDetector(rs),
			NewReceiverDetector(contracts.AgentWR, rs),
			NewReceiverDetector(contracts.AgentTE, rs),
			NewRusherDetector(rs),
			NewEPADetector(rs),
			NewPressureDetector(rs),
			NewWeatherDetector(rs),
		},
		logger: log,
	}
}

// RunAll invokes every detector against the matchup and reports which
// agents produced findings (invoked) and which ran without emitting any
// (silent). Sample-size suppression lands an agent in the silent list;
// it is not an error. The context is checked between detectors so a
// cancelled request aborts promptly.
func (r *Registry) RunAll(ctx context.Context, m *contracts.MatchupStats, rc contracts.RunContext) ([]contracts.Finding, []contracts.AgentID, []contracts.AgentID, error) {
	findings := make([]contracts.Finding, 0, 16)
	invoked := make([]contracts.AgentID, 0, len(r.detectors))
	silent := make([]contracts.AgentID, 0, len(r.detectors))

	for _, d := range r.detectors {
		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		default:
		}

		emitted := d.Detect(m, rc)
		if len(emitted) > 0 {
			invoked = append(invoked, d.Agent())
			findings = append(findings, emitted...)
		} else {
			silent = append(silent, d.Agent())
		}

		r.logger.WithFields(map[string]interface{}{
			"agent":    d.Agent(),
			"findings": len(emitted),
		}).Debug("Detector finished")
	}

	return findings, invoked, silent, nil
}

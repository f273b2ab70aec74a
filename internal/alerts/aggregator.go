package alerts

import (
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Aggregator merges findings into per-(agent, subject) alerts.
//
// Confidence is a documented function of threshold clearance: each
// finding scores floor + span * r where r is how far the value cleared
// its threshold toward the rule's ceiling (clamped to [0,1]); the alert
// takes the best finding's score plus a small bonus per corroborating
// finding, clamped to [0,1]. Severity is high with two or more
// corroborating findings for the subject, else medium.
type Aggregator struct {
	conf   ruleset.Confidence
	bands  map[string]ruleset.Band
	logger *logger.Logger
}

// NewAggregator creates an aggregator bound to one ruleset.
func NewAggregator(rs *ruleset.RuleSet, log *logger.Logger) *Aggregator {
	return &Aggregator{
		conf:   rs.Confidence,
		bands:  bandIndex(rs),
		logger: log,
	}
}

// Aggregate groups findings into alerts. Output order follows the first
// appearance of each (agent, subject) pair in the input, so identical
// input order always yields identical output order. Subjects with zero
// qualifying findings produce no alert.
func (a *Aggregator) Aggregate(findings []contracts.Finding) []contracts.Alert {
	type group struct {
		agent    contracts.AgentID
		subject  string
		findings []contracts.Finding
	}

	var order []string
	groups := make(map[string]*group)

	for _, f := range findings {
		key := string(f.Agent) + ":" + f.Subject
		g, ok := groups[key]
		if !ok {
			g = &group{agent: f.Agent, subject: f.Subject}
			groups[key] = g
			order = append(order, key)
		}
		g.findings = append(g.findings, f)
	}

	out := make([]contracts.Alert, 0, len(order))
	for _, key := range order {
		g := groups[key]

		severity := contracts.SeverityMedium
		if len(g.findings) >= 2 {
			severity = contracts.SeverityHigh
		}

		alert := contracts.Alert{
			ID:         alertID(g.agent, g.subject),
			Agent:      g.agent,
			Subject:    g.subject,
			Confidence: a.confidence(g.findings),
			Severity:   severity,
			Market:     marketFor(g.agent, g.subject),
			Rationale:  rationale(g.findings),
			Findings:   g.findings,
		}
		out = append(out, alert)

		a.logger.WithFields(map[string]interface{}{
			"alert":      alert.ID,
			"confidence": alert.Confidence,
			"severity":   alert.Severity,
			"findings":   len(g.findings),
		}).Debug("Aggregated alert")
	}

	return out
}

// confidence scores one finding group. Never extrapolated beyond [0,1].
func (a *Aggregator) confidence(findings []contracts.Finding) float64 {
	scores := make([]float64, 0, len(findings))
	for _, f := range findings {
		scores = append(scores, a.conf.Floor+a.conf.Span*a.clearance(f))
	}

	best, err := stats.Max(scores)
	if err != nil {
		return 0
	}

	c := best + a.conf.CorroborationBonus*float64(len(findings)-1)
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// clearance maps a finding's value into [0,1] between its rule's
// threshold and ceiling. The formula (v-T)/(C-T) handles both
// directions: rules with ceiling below threshold (cold weather) invert
// naturally. Findings without a numeric value, or with an unknown
// type, sit at the threshold (zero clearance).
func (a *Aggregator) clearance(f contracts.Finding) float64 {
	if f.ValueNum == nil {
		return 0
	}
	band, ok := a.bands[f.Type]
	if !ok || band.Ceiling == band.Threshold {
		return 0
	}

	r := (*f.ValueNum - band.Threshold) / (band.Ceiling - band.Threshold)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// bandIndex maps every finding type to its threshold rule.
func bandIndex(rs *ruleset.RuleSet) map[string]ruleset.Band {
	s := rs.Signals
	return map[string]ruleset.Band{
		"qb_rating_advantage":   s.QB.RatingAdvantage,
		"qb_ypa_advantage":      s.QB.YPAAdvantage,
		"wr_target_share":       s.WR.TargetShare,
		"wr_yprr_edge":          s.WR.YPRR,
		"te_target_share":       s.TE.TargetShare,
		"te_yprr_edge":          s.TE.YPRR,
		"hb_rush_share":         s.HB.RushShare,
		"hb_ypc_edge":           s.HB.YPC,
		"epa_offense_advantage": s.EPA.EPAAdvantage,
		"epa_pass_lean":         s.EPA.PassLean,
		"pressure_rate_edge":    s.Pressure.PressureRate,
		"pressure_blitz_rate":   s.Pressure.BlitzRate,
		"weather_wind":          s.Weather.WindMPH,
		"weather_precip":        s.Weather.PrecipProb,
		"weather_cold":          s.Weather.ColdTempF,
	}
}

// alertID builds the stable per-run identifier. Uniqueness follows from
// the (agent, subject) grouping key.
func alertID(agent contracts.AgentID, subject string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(subject), " ", "-"))
	return string(agent) + ":" + slug
}

// marketFor renders the human-readable market string for an alert.
func marketFor(agent contracts.AgentID, subject string) string {
	switch agent {
	case contracts.AgentQB:
		return subject + " Passing Yards"
	case contracts.AgentWR, contracts.AgentTE:
		return subject + " Receiving Yards"
	case contracts.AgentHB:
		return subject + " Rushing Yards"
	case contracts.AgentEPA:
		return subject + " Team Total"
	case contracts.AgentPressure:
		return subject + " Sacks"
	case contracts.AgentWeather:
		return "Game Total"
	default:
		return subject
	}
}

// rationale joins the finding contexts in emission order.
func rationale(findings []contracts.Finding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.ComparisonContext != "" {
			parts = append(parts, f.ComparisonContext)
		}
	}
	return strings.Join(parts, "; ")
}

package contracts

import "fmt"

// CorrelationType names the fixed grouping rule that produced a script.
type CorrelationType string

const (
	CorrelationGameScript      CorrelationType = "game_script"
	CorrelationPlayerStack     CorrelationType = "player_stack"
	CorrelationWeatherCascade  CorrelationType = "weather_cascade"
	CorrelationDefensiveFunnel CorrelationType = "defensive_funnel"
	CorrelationVolumeShare     CorrelationType = "volume_share"
)

// RiskLevel classifies a script by its combined confidence.
type RiskLevel string

const (
	RiskConservative RiskLevel = "conservative"
	RiskModerate     RiskLevel = "moderate"
	RiskAggressive   RiskLevel = "aggressive"
)

// Script leg count bounds.
const (
	MinScriptLegs = 2
	MaxScriptLegs = 6
)

// Leg is one selection inside a script. Each leg references exactly one alert.
type Leg struct {
	AlertID           string   `json:"alert_id"`
	Agent             AgentID  `json:"agent"`
	Market            string   `json:"market"`
	Selection         string   `json:"selection"`
	CorrelationFactor *float64 `json:"correlation_factor,omitempty"` // [-1,1]
}

// Script is a correlated parlay candidate. Never mutated after construction.
type Script struct {
	Legs               []Leg           `json:"legs"`
	CorrelationType    CorrelationType `json:"correlation_type"`
	Explanation        string          `json:"explanation"`
	CombinedConfidence float64         `json:"combined_confidence"` // [0,1]
	RiskLevel          RiskLevel       `json:"risk_level"`
	ProvenanceHash     string          `json:"provenance_hash"`
}

// Validate enforces the structural invariants of a finished script.
func (s *Script) Validate() error {
	if len(s.Legs) < MinScriptLegs || len(s.Legs) > MaxScriptLegs {
		return fmt.Errorf("script must have %d-%d legs, got %d", MinScriptLegs, MaxScriptLegs, len(s.Legs))
	}
	if s.CombinedConfidence < 0 || s.CombinedConfidence > 1 {
		return fmt.Errorf("combined_confidence %f outside [0,1]", s.CombinedConfidence)
	}
	for i, leg := range s.Legs {
		if leg.AlertID == "" {
			return fmt.Errorf("leg %d missing alert reference", i)
		}
		if leg.CorrelationFactor != nil {
			if f := *leg.CorrelationFactor; f < -1 || f > 1 {
				return fmt.Errorf("leg %d correlation_factor %f outside [-1,1]", i, f)
			}
		}
	}
	switch s.CorrelationType {
	case CorrelationGameScript, CorrelationPlayerStack, CorrelationWeatherCascade,
		CorrelationDefensiveFunnel, CorrelationVolumeShare:
	default:
		return fmt.Errorf("unknown correlation_type %q", s.CorrelationType)
	}
	return nil
}

// AlertIDs returns the alert ids behind the script's legs, in leg order.
func (s *Script) AlertIDs() []string {
	ids := make([]string, len(s.Legs))
	for i, leg := range s.Legs {
		ids[i] = leg.AlertID
	}
	return ids
}

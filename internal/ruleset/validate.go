package ruleset

import "fmt"

// Validate rejects rule sets that would break pipeline invariants.
func Validate(rs *RuleSet) error {
	if rs.Meta.RulesetID == "" || rs.Meta.Version == "" {
		return fmt.Errorf("ruleset: meta.ruleset_id and meta.version are required")
	}

	if rs.Confidence.Floor < 0 || rs.Confidence.Floor > 1 {
		return fmt.Errorf("ruleset: confidence.floor %f outside [0,1]", rs.Confidence.Floor)
	}
	if rs.Confidence.Floor+rs.Confidence.Span > 1 {
		return fmt.Errorf("ruleset: confidence floor+span %f exceeds 1",
			rs.Confidence.Floor+rs.Confidence.Span)
	}
	if rs.Confidence.CorroborationBonus < 0 {
		return fmt.Errorf("ruleset: confidence.corroboration_bonus must be >= 0")
	}

	if rs.Correlation.MaxScripts < 1 || rs.Correlation.MaxScripts > 3 {
		return fmt.Errorf("ruleset: correlation.max_scripts %d outside [1,3]", rs.Correlation.MaxScripts)
	}
	for name, f := range map[string]float64{
		"weather_cascade":  rs.Correlation.Factors.WeatherCascade,
		"defensive_funnel": rs.Correlation.Factors.DefensiveFunnel,
		"volume_share":     rs.Correlation.Factors.VolumeShare,
		"game_script":      rs.Correlation.Factors.GameScript,
	} {
		if f < -1 || f > 1 {
			return fmt.Errorf("ruleset: correlation factor %s=%f outside [-1,1]", name, f)
		}
	}

	// Tier bands must stay disjoint: aggressive < moderate < safe.
	if !(rs.Tiers.Aggressive.MinConfidence < rs.Tiers.Moderate.MinConfidence &&
		rs.Tiers.Moderate.MinConfidence < rs.Tiers.Safe.MinConfidence) {
		return fmt.Errorf("ruleset: tier bands must be strictly ordered aggressive < moderate < safe")
	}
	for name, t := range map[string]TierRule{
		"safe":       rs.Tiers.Safe,
		"moderate":   rs.Tiers.Moderate,
		"aggressive": rs.Tiers.Aggressive,
	} {
		if t.Cap < 1 {
			return fmt.Errorf("ruleset: tiers.%s.cap must be >= 1", name)
		}
		if t.MinConfidence < 0 || t.MinConfidence > 1 {
			return fmt.Errorf("ruleset: tiers.%s.min_confidence %f outside [0,1]", name, t.MinConfidence)
		}
	}

	if rs.LegGuard.Tolerance < 0 {
		return fmt.Errorf("ruleset: leg_guard.tolerance must be >= 0")
	}

	return nil
}

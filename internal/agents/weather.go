package agents

import (
	"fmt"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// WeatherDetector reads the kickoff forecast. Its subject is the game
// itself. A missing forecast or a dome suppresses every finding; that
// is silence, not an error.
type WeatherDetector struct {
	rules ruleset.WeatherRules
}

// NewWeatherDetector creates a new weather detector.
func NewWeatherDetector(rs *ruleset.RuleSet) *WeatherDetector {
	return &WeatherDetector{rules: rs.Signals.Weather}
}

// Agent returns the detector's agent id.
func (d *WeatherDetector) Agent() contracts.AgentID { return contracts.AgentWeather }

// Detect evaluates the game-level forecast.
func (d *WeatherDetector) Detect(m *contracts.MatchupStats, rc contracts.RunContext) []contracts.Finding {
	w := m.Weather
	if w == nil || w.Dome {
		return nil
	}

	var out []contracts.Finding

	if w.WindMPH > d.rules.WindMPH.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentWeather, "weather_wind", "game", w.WindMPH,
			fmt.Sprintf("%.0f mph sustained wind forecast", w.WindMPH),
			rc))
	}

	if w.PrecipProb > d.rules.PrecipProb.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentWeather, "weather_precip", "game", w.PrecipProb,
			fmt.Sprintf("%.0f%% precipitation chance", w.PrecipProb*100),
			rc))
	}

	// Cold fires on a strict less-than: temperature exactly at the
	// threshold does not qualify.
	if w.TempF < d.rules.ColdTempF.Threshold {
		out = append(out, contracts.NumFinding(
			contracts.AgentWeather, "weather_cold", "game", w.TempF,
			fmt.Sprintf("%.0f°F at kickoff", w.TempF),
			rc))
	}

	return out
}

package contracts

// MatchupStats carries the raw per-team stat inputs fed to the detectors.
// Detectors treat one side as subject and the other as opponent, then swap.
type MatchupStats struct {
	Home    TeamSide           `json:"home"`
	Away    TeamSide           `json:"away"`
	Weather *WeatherConditions `json:"weather,omitempty"`
}

// TeamSide holds one team's offensive and defensive inputs.
type TeamSide struct {
	Team      string          `json:"team"`
	QB        QBStats         `json:"qb"`
	Receivers []ReceiverStats `json:"receivers"`
	Backs     []RusherStats   `json:"backs"`
	Offense   OffenseStats    `json:"offense"`
	Defense   DefenseStats    `json:"defense"`
}

// QBStats are season-to-date passing inputs for the starting quarterback.
type QBStats struct {
	Player          string  `json:"player"`
	Attempts        int     `json:"attempts"`
	Rating          float64 `json:"rating"`
	YardsPerAttempt float64 `json:"yards_per_attempt"`
	SackRate        float64 `json:"sack_rate"`
}

// ReceiverStats cover both wide receivers and tight ends; Position
// selects which detector reads them.
type ReceiverStats struct {
	Player           string  `json:"player"`
	Position         string  `json:"position"` // "WR" or "TE"
	Routes           int     `json:"routes"`
	Targets          int     `json:"targets"`
	TargetShare      float64 `json:"target_share"`
	YardsPerRouteRun float64 `json:"yards_per_route_run"`
}

// RusherStats are per-back rushing inputs.
type RusherStats struct {
	Player        string  `json:"player"`
	Carries       int     `json:"carries"`
	RushShare     float64 `json:"rush_share"`
	YardsPerCarry float64 `json:"yards_per_carry"`
}

// OffenseStats are team-level efficiency inputs.
type OffenseStats struct {
	Plays      int     `json:"plays"`
	EPAPerPlay float64 `json:"epa_per_play"`
	PassRate   float64 `json:"pass_rate"`
}

// DefenseStats are team-level pass-rush inputs.
type DefenseStats struct {
	PassRushSnaps int     `json:"pass_rush_snaps"`
	PressureRate  float64 `json:"pressure_rate"`
	BlitzRate     float64 `json:"blitz_rate"`
	Sacks         int     `json:"sacks"`
}

// WeatherConditions describe the forecast at kickoff. Nil means no
// forecast was available; Dome suppresses all weather findings.
type WeatherConditions struct {
	WindMPH     float64 `json:"wind_mph"`
	PrecipProb  float64 `json:"precip_prob"` // [0,1]
	TempF       float64 `json:"temp_f"`
	Dome        bool    `json:"dome"`
	ObservedAt  int64   `json:"observed_at,omitempty"` // unix millis
}

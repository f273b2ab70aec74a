package ruleset

// RuleSet is the full set of tunable rules behind a run: detector
// thresholds, confidence shaping, correlation factors, and tier bands.
// Every numeric that used to be a scattered literal lives here so tests
// can override any of them; Default() mirrors the shipped YAML.
type RuleSet struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Signals     Signals     `yaml:"signals" json:"signals"`
	Confidence  Confidence  `yaml:"confidence" json:"confidence"`
	Correlation Correlation `yaml:"correlation" json:"correlation"`
	Tiers       Tiers       `yaml:"tiers" json:"tiers"`
	LegGuard    LegGuard    `yaml:"leg_guard" json:"leg_guard"`
}

// Meta identifies the ruleset version; it feeds every provenance hash.
type Meta struct {
	RulesetID string `yaml:"ruleset_id" json:"ruleset_id"`
	Version   string `yaml:"version" json:"version"`
}

// Band is a threshold rule: a finding fires on a strict comparison
// against Threshold, and its clearance toward Ceiling sets confidence.
type Band struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Ceiling   float64 `yaml:"ceiling" json:"ceiling"`
}

// Signals holds per-agent thresholds and minimum-sample gates.
type Signals struct {
	QB       QBRules       `yaml:"qb" json:"qb"`
	WR       ReceiverRules `yaml:"wr" json:"wr"`
	TE       ReceiverRules `yaml:"te" json:"te"`
	HB       RusherRules   `yaml:"hb" json:"hb"`
	EPA      EPARules      `yaml:"epa" json:"epa"`
	Pressure PressureRules `yaml:"pressure" json:"pressure"`
	Weather  WeatherRules  `yaml:"weather" json:"weather"`
}

type QBRules struct {
	MinAttempts     int  `yaml:"min_attempts" json:"min_attempts"`
	RatingAdvantage Band `yaml:"rating_advantage" json:"rating_advantage"`
	YPAAdvantage    Band `yaml:"ypa_advantage" json:"ypa_advantage"`
}

type ReceiverRules struct {
	MinRoutes   int  `yaml:"min_routes" json:"min_routes"`
	TargetShare Band `yaml:"target_share" json:"target_share"`
	YPRR        Band `yaml:"yprr" json:"yprr"`
}

type RusherRules struct {
	MinCarries int  `yaml:"min_carries" json:"min_carries"`
	RushShare  Band `yaml:"rush_share" json:"rush_share"`
	YPC        Band `yaml:"ypc" json:"ypc"`
}

type EPARules struct {
	MinPlays     int  `yaml:"min_plays" json:"min_plays"`
	EPAAdvantage Band `yaml:"epa_advantage" json:"epa_advantage"`
	PassLean     Band `yaml:"pass_lean" json:"pass_lean"`
}

type PressureRules struct {
	MinPassRushSnaps int  `yaml:"min_pass_rush_snaps" json:"min_pass_rush_snaps"`
	PressureRate     Band `yaml:"pressure_rate" json:"pressure_rate"`
	BlitzRate        Band `yaml:"blitz_rate" json:"blitz_rate"`
}

type WeatherRules struct {
	WindMPH    Band `yaml:"wind_mph" json:"wind_mph"`
	PrecipProb Band `yaml:"precip_prob" json:"precip_prob"`
	// ColdTempF fires on a strict less-than comparison.
	ColdTempF Band `yaml:"cold_temp_f" json:"cold_temp_f"`
}

// Confidence shapes how threshold clearance maps into alert confidence.
// A finding exactly past its threshold scores Floor; one at or beyond
// the ceiling scores Floor+Span. Each corroborating finding past the
// first adds CorroborationBonus. Always clamped to [0,1].
type Confidence struct {
	Floor              float64 `yaml:"floor" json:"floor"`
	Span               float64 `yaml:"span" json:"span"`
	CorroborationBonus float64 `yaml:"corroboration_bonus" json:"corroboration_bonus"`
}

// Correlation holds per-rule factors and the final selection bound.
type Correlation struct {
	MaxScripts int                `yaml:"max_scripts" json:"max_scripts"`
	Factors    CorrelationFactors `yaml:"factors" json:"factors"`
}

type CorrelationFactors struct {
	WeatherCascade  float64 `yaml:"weather_cascade" json:"weather_cascade"`
	DefensiveFunnel float64 `yaml:"defensive_funnel" json:"defensive_funnel"`
	VolumeShare     float64 `yaml:"volume_share" json:"volume_share"`
	GameScript      float64 `yaml:"game_script" json:"game_script"`
}

// Tiers holds the three ladder bands. Band boundaries are contractual:
// safe is confidence >= Safe.MinConfidence with high severity, moderate
// is [Moderate.MinConfidence, Safe.MinConfidence) or medium severity,
// aggressive is [Aggressive.MinConfidence, Moderate.MinConfidence).
type Tiers struct {
	Safe       TierRule `yaml:"safe" json:"safe"`
	Moderate   TierRule `yaml:"moderate" json:"moderate"`
	Aggressive TierRule `yaml:"aggressive" json:"aggressive"`
}

type TierRule struct {
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`
	Cap           int     `yaml:"cap" json:"cap"`
	BankrollPct   float64 `yaml:"bankroll_pct" json:"bankroll_pct"`
}

// LegGuard holds the team-total normalization tolerance.
type LegGuard struct {
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
}

// Default returns the shipped ruleset. Values match
// config/rules/afb_parley_v1.yaml.
func Default() *RuleSet {
	return &RuleSet{
		Meta: Meta{RulesetID: "afb_parley", Version: "v1.2.0"},
		Signals: Signals{
			QB: QBRules{
				MinAttempts:     100,
				RatingAdvantage: Band{Threshold: 12.0, Ceiling: 35.0},
				YPAAdvantage:    Band{Threshold: 1.5, Ceiling: 4.0},
			},
			WR: ReceiverRules{
				MinRoutes:   80,
				TargetShare: Band{Threshold: 0.26, Ceiling: 0.40},
				YPRR:        Band{Threshold: 2.4, Ceiling: 3.5},
			},
			TE: ReceiverRules{
				MinRoutes:   60,
				TargetShare: Band{Threshold: 0.18, Ceiling: 0.30},
				YPRR:        Band{Threshold: 1.9, Ceiling: 2.8},
			},
			HB: RusherRules{
				MinCarries: 50,
				RushShare:  Band{Threshold: 0.62, Ceiling: 0.85},
				YPC:        Band{Threshold: 4.8, Ceiling: 6.5},
			},
			EPA: EPARules{
				MinPlays:     300,
				EPAAdvantage: Band{Threshold: 0.08, Ceiling: 0.25},
				PassLean:     Band{Threshold: 0.62, Ceiling: 0.72},
			},
			Pressure: PressureRules{
				MinPassRushSnaps: 150,
				PressureRate:     Band{Threshold: 0.32, Ceiling: 0.45},
				BlitzRate:        Band{Threshold: 0.35, Ceiling: 0.50},
			},
			Weather: WeatherRules{
				WindMPH:    Band{Threshold: 15.0, Ceiling: 30.0},
				PrecipProb: Band{Threshold: 0.50, Ceiling: 0.90},
				ColdTempF:  Band{Threshold: 20.0, Ceiling: -5.0},
			},
		},
		Confidence: Confidence{
			Floor:              0.50,
			Span:               0.45,
			CorroborationBonus: 0.05,
		},
		Correlation: Correlation{
			MaxScripts: 3,
			Factors: CorrelationFactors{
				WeatherCascade:  0.85,
				DefensiveFunnel: 0.75,
				VolumeShare:     -0.35,
				GameScript:      0.65,
			},
		},
		Tiers: Tiers{
			Safe:       TierRule{MinConfidence: 0.7, Cap: 3, BankrollPct: 0.03},
			Moderate:   TierRule{MinConfidence: 0.5, Cap: 4, BankrollPct: 0.02},
			Aggressive: TierRule{MinConfidence: 0.3, Cap: 3, BankrollPct: 0.01},
		},
		LegGuard: LegGuard{Tolerance: 0.01},
	}
}

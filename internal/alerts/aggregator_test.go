package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

var testRC = contracts.RunContext{DataTimestamp: 1700000000, DataVersion: "wk5"}

func newAggregator(t *testing.T) (*Aggregator, *ruleset.RuleSet) {
	t.Helper()
	rs := ruleset.Default()
	return NewAggregator(rs, logger.NewNop()), rs
}

func TestAggregate_GroupsByAgentAndSubject(t *testing.T) {
	agg, _ := newAggregator(t)

	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentQB, "qb_rating_advantage", "Josh Allen", 20, "rating edge", testRC),
		contracts.NumFinding(contracts.AgentWR, "wr_target_share", "Stefon Diggs", 0.30, "share", testRC),
		contracts.NumFinding(contracts.AgentQB, "qb_ypa_advantage", "Josh Allen", 2.5, "ypa edge", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 2)

	allen := alerts[0]
	assert.Equal(t, "qb:josh-allen", allen.ID)
	assert.Equal(t, contracts.AgentQB, allen.Agent)
	assert.Equal(t, "Josh Allen", allen.Subject)
	assert.Len(t, allen.Findings, 2)
	assert.Equal(t, contracts.SeverityHigh, allen.Severity)
	assert.Equal(t, "Josh Allen Passing Yards", allen.Market)
	assert.Equal(t, "rating edge; ypa edge", allen.Rationale)

	diggs := alerts[1]
	assert.Equal(t, "wr:stefon-diggs", diggs.ID)
	assert.Equal(t, contracts.SeverityMedium, diggs.Severity)
	assert.Equal(t, "Stefon Diggs Receiving Yards", diggs.Market)
}

func TestAggregate_OrderFollowsFirstAppearance(t *testing.T) {
	agg, _ := newAggregator(t)

	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game", 22, "wind", testRC),
		contracts.NumFinding(contracts.AgentQB, "qb_rating_advantage", "Josh Allen", 20, "rating", testRC),
		contracts.NumFinding(contracts.AgentWeather, "weather_precip", "game", 0.8, "rain", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 2)
	assert.Equal(t, "weather:game", alerts[0].ID)
	assert.Equal(t, "qb:josh-allen", alerts[1].ID)
	assert.Equal(t, "Game Total", alerts[0].Market)
}

func TestAggregate_ConfidenceFloorAtThreshold(t *testing.T) {
	agg, rs := newAggregator(t)

	// Value sitting on the threshold scores exactly the floor.
	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game",
			rs.Signals.Weather.WindMPH.Threshold, "wind", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.InDelta(t, rs.Confidence.Floor, alerts[0].Confidence, 1e-9)
}

func TestAggregate_ConfidenceCapsAtCeiling(t *testing.T) {
	agg, rs := newAggregator(t)

	// Far beyond the ceiling clamps to floor + span, never above.
	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game", 200, "wind", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.InDelta(t, rs.Confidence.Floor+rs.Confidence.Span, alerts[0].Confidence, 1e-9)
}

func TestAggregate_MidBandClearance(t *testing.T) {
	agg, rs := newAggregator(t)

	band := rs.Signals.QB.RatingAdvantage
	mid := band.Threshold + (band.Ceiling-band.Threshold)/2

	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentQB, "qb_rating_advantage", "Josh Allen", mid, "rating", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.InDelta(t, rs.Confidence.Floor+rs.Confidence.Span*0.5, alerts[0].Confidence, 1e-9)
}

func TestAggregate_ColdBandInverts(t *testing.T) {
	agg, rs := newAggregator(t)

	band := rs.Signals.Weather.ColdTempF // ceiling below threshold
	mid := band.Threshold + (band.Ceiling-band.Threshold)/2

	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_cold", "game", mid, "cold", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.InDelta(t, rs.Confidence.Floor+rs.Confidence.Span*0.5, alerts[0].Confidence, 1e-9)
}

func TestAggregate_CorroborationBonus(t *testing.T) {
	agg, rs := newAggregator(t)

	one := agg.Aggregate([]contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game", 22, "wind", testRC),
	})
	two := agg.Aggregate([]contracts.Finding{
		contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game", 22, "wind", testRC),
		contracts.NumFinding(contracts.AgentWeather, "weather_precip", "game",
			rs.Signals.Weather.PrecipProb.Threshold, "rain", testRC),
	})

	require.Len(t, one, 1)
	require.Len(t, two, 1)
	// The second finding scores lower but still adds the bonus on top of
	// the best score.
	assert.InDelta(t, one[0].Confidence+rs.Confidence.CorroborationBonus, two[0].Confidence, 1e-9)
	assert.Equal(t, contracts.SeverityHigh, two[0].Severity)
	assert.Equal(t, contracts.SeverityMedium, one[0].Severity)
}

func TestAggregate_ConfidenceNeverAboveOne(t *testing.T) {
	agg, _ := newAggregator(t)

	findings := make([]contracts.Finding, 0, 20)
	for i := 0; i < 20; i++ {
		findings = append(findings,
			contracts.NumFinding(contracts.AgentWeather, "weather_wind", "game", 200, "wind", testRC))
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.LessOrEqual(t, alerts[0].Confidence, 1.0)
}

func TestAggregate_UnknownTypeScoresFloor(t *testing.T) {
	agg, rs := newAggregator(t)

	findings := []contracts.Finding{
		contracts.NumFinding(contracts.AgentQB, "qb_unknown_metric", "Josh Allen", 99, "???", testRC),
	}

	alerts := agg.Aggregate(findings)
	require.Len(t, alerts, 1)
	assert.InDelta(t, rs.Confidence.Floor, alerts[0].Confidence, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	agg, _ := newAggregator(t)
	assert.Empty(t, agg.Aggregate(nil))
}

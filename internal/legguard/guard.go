package legguard

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

var (
	teamTotalPattern = regexp.MustCompile(`(?i)\bteam\s+total\b`)
	linePattern      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Guard normalizes team-total legs whose line is really the game
// total. Model output sometimes labels the full-game total as a team
// total; when the parsed line sits within tolerance of the known game
// total, the leg is rewritten to the Game Total market. Everything
// else passes through untouched.
type Guard struct {
	tolerance float64
}

// NewGuard creates a guard with the ruleset's tolerance.
func NewGuard(rs *ruleset.RuleSet) *Guard {
	return &Guard{tolerance: rs.LegGuard.Tolerance}
}

// Normalize applies the rewrite to every qualifying leg. A nil
// gameTotal disables the guard entirely. The rewrite is idempotent: a
// rewritten leg no longer matches the team-total pattern, so a second
// pass changes nothing.
func (g *Guard) Normalize(legs []contracts.Leg, gameTotal *float64) []contracts.Leg {
	if gameTotal == nil {
		return legs
	}

	out := make([]contracts.Leg, len(legs))
	for i, leg := range legs {
		out[i] = g.normalizeLeg(leg, *gameTotal)
	}
	return out
}

func (g *Guard) normalizeLeg(leg contracts.Leg, gameTotal float64) contracts.Leg {
	if !teamTotalPattern.MatchString(leg.Market) {
		return leg
	}

	direction, ok := directionOf(leg.Selection)
	if !ok {
		return leg
	}

	match := linePattern.FindString(leg.Selection)
	if match == "" {
		return leg
	}
	line, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return leg
	}

	// Strict comparison: a gap of exactly the tolerance does not
	// qualify.
	if math.Abs(line-gameTotal) >= g.tolerance {
		return leg
	}

	leg.Market = "Game Total"
	leg.Selection = direction + " " + formatLine(line) + " Points"
	return leg
}

// directionOf finds the Over/Under word, canonically capitalized.
func directionOf(selection string) (string, bool) {
	for _, word := range strings.Fields(selection) {
		switch strings.ToLower(word) {
		case "over":
			return "Over", true
		case "under":
			return "Under", true
		}
	}
	return "", false
}

// formatLine renders the line without a trailing zero: 44.5 stays
// "44.5", 45.0 becomes "45".
func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}

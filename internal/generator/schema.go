package generator

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Required strings. The validator matches these byte for byte; a model
// that paraphrases them fails validation and the request falls back.
const (
	NoteUnitStake = "All payouts assume a 1 unit stake."
	NoteNotAdvice = "Lines move; this is informational output, not betting advice."
	OfferOpposite = "If the lean is wrong, the opposite side of the same line is the play."
)

// Script count and leg bounds for generated output. Tighter than the
// deterministic engine's 2-6: the model must commit to fuller parlays.
const (
	minGenScripts    = 1
	maxGenScripts    = 3
	minGenScriptLegs = 3
	maxGenScriptLegs = 5
)

// Response is a validated generator payload.
type Response struct {
	Assumptions   Assumptions `json:"assumptions"`
	Scripts       []GenScript `json:"scripts"`
	OfferOpposite string      `json:"offer_opposite"`
}

// Assumptions is the model's stated view of the game environment.
type Assumptions struct {
	GameTotal float64  `json:"game_total"`
	Notes     []string `json:"notes"`
}

// GenScript is one generated parlay.
type GenScript struct {
	Legs        []GenLeg `json:"legs"`
	Stake       int      `json:"stake"`
	Payout      string   `json:"payout"`
	Explanation string   `json:"explanation"`
}

// GenLeg is one generated selection with its American odds.
type GenLeg struct {
	Market    string `json:"market"`
	Selection string `json:"selection"`
	Odds      int    `json:"odds"`
}

// ParseResponse decodes and strictly validates a generator payload.
// The schema is closed: a missing required key or any extra key
// rejects the whole payload before it reaches the pipeline.
func ParseResponse(raw []byte) (*Response, error) {
	if err := checkKeys(raw, []string{"assumptions", "scripts", "offer_opposite"}); err != nil {
		return nil, recoverable("schema", err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, recoverable("schema", fmt.Errorf("decode: %w", err))
	}

	if err := validate(raw, &resp); err != nil {
		return nil, recoverable("schema", err)
	}
	return &resp, nil
}

func validate(raw []byte, resp *Response) error {
	var top struct {
		Assumptions json.RawMessage   `json:"assumptions"`
		Scripts     []json.RawMessage `json:"scripts"`
	}
	if err := json.Unmarshal(raw, &top); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := checkKeys(top.Assumptions, []string{"game_total", "notes"}); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}
	if !containsAll(resp.Assumptions.Notes, NoteUnitStake, NoteNotAdvice) {
		return fmt.Errorf("assumptions.notes missing a required note")
	}

	if resp.OfferOpposite != OfferOpposite {
		return fmt.Errorf("offer_opposite string does not match")
	}

	if n := len(resp.Scripts); n < minGenScripts || n > maxGenScripts {
		return fmt.Errorf("expected %d-%d scripts, got %d", minGenScripts, maxGenScripts, n)
	}

	for i, rawScript := range top.Scripts {
		if err := checkKeys(rawScript, []string{"legs", "stake", "payout", "explanation"}); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}

		s := resp.Scripts[i]
		if s.Stake != 1 {
			return fmt.Errorf("script %d: stake must be 1, got %d", i, s.Stake)
		}
		if n := len(s.Legs); n < minGenScriptLegs || n > maxGenScriptLegs {
			return fmt.Errorf("script %d: expected %d-%d legs, got %d", i, minGenScriptLegs, maxGenScriptLegs, n)
		}

		odds := make([]int, 0, len(s.Legs))
		for j, leg := range s.Legs {
			if leg.Market == "" || leg.Selection == "" {
				return fmt.Errorf("script %d leg %d: market and selection required", i, j)
			}
			if leg.Odds == 0 {
				return fmt.Errorf("script %d leg %d: odds required", i, j)
			}
			odds = append(odds, leg.Odds)
		}

		// The quoted payout must reproduce the parlay math exactly.
		if want := FormatPayout(ParlayDecimal(odds)); s.Payout != want {
			return fmt.Errorf("script %d: payout %q does not match odds (want %q)", i, s.Payout, want)
		}
	}

	return nil
}

// checkKeys enforces a closed key set on one JSON object.
func checkKeys(raw []byte, want []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("not an object: %w", err)
	}

	for _, key := range want {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("missing required key %q", key)
		}
	}
	if len(obj) != len(want) {
		extras := make([]string, 0, len(obj))
		for key := range obj {
			if !contains(want, key) {
				extras = append(extras, key)
			}
		}
		sort.Strings(extras)
		return fmt.Errorf("unexpected keys %v", extras)
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsAll(haystack []string, needles ...string) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

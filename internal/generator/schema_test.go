package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validPayload builds the smallest payload that passes validation.
// Tests mutate one field at a time.
func validPayload() map[string]interface{} {
	legs := []map[string]interface{}{
		{"market": "Josh Allen Passing Yards", "selection": "Over 249.5", "odds": -110},
		{"market": "Stefon Diggs Receiving Yards", "selection": "Over 79.5", "odds": -115},
		{"market": "Game Total", "selection": "Under 44.5", "odds": -105},
	}
	payout := FormatPayout(ParlayDecimal([]int{-110, -115, -105}))
	return map[string]interface{}{
		"assumptions": map[string]interface{}{
			"game_total": 44.5,
			"notes":      []string{NoteUnitStake, NoteNotAdvice},
		},
		"scripts": []map[string]interface{}{
			{
				"legs":        legs,
				"stake":       1,
				"payout":      payout,
				"explanation": "Wind suppresses the passing game on both sides.",
			},
		},
		"offer_opposite": OfferOpposite,
	}
}

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestParseResponse_Valid(t *testing.T) {
	resp, err := ParseResponse(marshal(t, validPayload()))
	require.NoError(t, err)

	assert.Equal(t, 44.5, resp.Assumptions.GameTotal)
	require.Len(t, resp.Scripts, 1)
	assert.Equal(t, 1, resp.Scripts[0].Stake)
	assert.Len(t, resp.Scripts[0].Legs, 3)
	assert.Equal(t, OfferOpposite, resp.OfferOpposite)
}

func TestParseResponse_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p map[string]interface{})
	}{
		{"missing top-level key", func(p map[string]interface{}) {
			delete(p, "offer_opposite")
		}},
		{"extra top-level key", func(p map[string]interface{}) {
			p["confidence"] = 0.9
		}},
		{"extra assumptions key", func(p map[string]interface{}) {
			p["assumptions"].(map[string]interface{})["spread"] = -3.5
		}},
		{"paraphrased unit stake note", func(p map[string]interface{}) {
			p["assumptions"].(map[string]interface{})["notes"] = []string{
				"All payouts assume a one unit stake.", NoteNotAdvice,
			}
		}},
		{"missing advice note", func(p map[string]interface{}) {
			p["assumptions"].(map[string]interface{})["notes"] = []string{NoteUnitStake}
		}},
		{"paraphrased offer opposite", func(p map[string]interface{}) {
			p["offer_opposite"] = "If the lean is wrong, take the other side."
		}},
		{"zero scripts", func(p map[string]interface{}) {
			p["scripts"] = []map[string]interface{}{}
		}},
		{"stake not one", func(p map[string]interface{}) {
			p["scripts"].([]map[string]interface{})[0]["stake"] = 2
		}},
		{"extra script key", func(p map[string]interface{}) {
			p["scripts"].([]map[string]interface{})[0]["confidence"] = 0.8
		}},
		{"too few legs", func(p map[string]interface{}) {
			s := p["scripts"].([]map[string]interface{})[0]
			s["legs"] = s["legs"].([]map[string]interface{})[:2]
			s["payout"] = FormatPayout(ParlayDecimal([]int{-110, -115}))
		}},
		{"payout does not match odds", func(p map[string]interface{}) {
			p["scripts"].([]map[string]interface{})[0]["payout"] = "9.99"
		}},
		{"leg missing selection", func(p map[string]interface{}) {
			s := p["scripts"].([]map[string]interface{})[0]
			s["legs"].([]map[string]interface{})[0]["selection"] = ""
		}},
		{"leg odds zero", func(p map[string]interface{}) {
			s := p["scripts"].([]map[string]interface{})[0]
			s["legs"].([]map[string]interface{})[0]["odds"] = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)

			_, err := ParseResponse(marshal(t, p))
			require.Error(t, err)
			assert.True(t, IsRecoverable(err), "schema failures must be recoverable")
		})
	}
}

func TestParseResponse_NotJSON(t *testing.T) {
	_, err := ParseResponse([]byte("the lean is unders"))
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
}

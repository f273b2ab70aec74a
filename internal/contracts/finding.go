package contracts

// AgentID identifies one of the fixed signal detectors.
type AgentID string

const (
	AgentQB       AgentID = "qb"
	AgentWR       AgentID = "wr"
	AgentTE       AgentID = "te"
	AgentHB       AgentID = "hb"
	AgentEPA      AgentID = "epa"
	AgentPressure AgentID = "pressure"
	AgentWeather  AgentID = "weather"
)

// AllAgents lists every detector in invocation order.
// Order matters: downstream alert ordering reflects it.
var AllAgents = []AgentID{
	AgentQB,
	AgentWR,
	AgentTE,
	AgentHB,
	AgentEPA,
	AgentPressure,
	AgentWeather,
}

// Valid reports whether the agent id belongs to the fixed detector set.
func (a AgentID) Valid() bool {
	for _, id := range AllAgents {
		if a == id {
			return true
		}
	}
	return false
}

// RunContext carries the data snapshot identity shared by every finding in a run.
type RunContext struct {
	DataTimestamp int64  `json:"data_timestamp"` // unix millis of the stat snapshot
	DataVersion   string `json:"data_version"`
}

// Finding is a single atomic observation emitted by a detector.
// Immutable once emitted; detectors return fresh slices on every call.
type Finding struct {
	Agent             AgentID  `json:"agent"`
	Type              string   `json:"type"` // names the threshold rule that fired
	Subject           string   `json:"subject"`
	ValueNum          *float64 `json:"value_num,omitempty"`
	ValueStr          string   `json:"value_str,omitempty"`
	ComparisonContext string   `json:"comparison_context,omitempty"`
	DataTimestamp     int64    `json:"data_timestamp"`
	DataVersion       string   `json:"data_version"`
}

// NumFinding builds a numeric finding stamped with the run context.
func NumFinding(agent AgentID, typ, subject string, value float64, comparison string, rc RunContext) Finding {
	v := value
	return Finding{
		Agent:             agent,
		Type:              typ,
		Subject:           subject,
		ValueNum:          &v,
		ComparisonContext: comparison,
		DataTimestamp:     rc.DataTimestamp,
		DataVersion:       rc.DataVersion,
	}
}

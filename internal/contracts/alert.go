package contracts

// Severity buckets an alert by how well corroborated it is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Alert is the user-facing aggregation of one or more findings for a
// single (agent, subject) pair. Read-only downstream of the aggregator.
type Alert struct {
	ID         string    `json:"id"` // unique within a run
	Agent      AgentID   `json:"agent"`
	Subject    string    `json:"subject"`
	Confidence float64   `json:"confidence"` // [0,1]
	Severity   Severity  `json:"severity"`
	Market     string    `json:"market"`
	Rationale  string    `json:"rationale"`
	Findings   []Finding `json:"findings"`
}

// AgentOf builds the alertID -> agent side map consumed by the
// correlation engine.
func AgentOf(alerts []Alert) map[string]AgentID {
	m := make(map[string]AgentID, len(alerts))
	for _, a := range alerts {
		m[a.ID] = a.Agent
	}
	return m
}

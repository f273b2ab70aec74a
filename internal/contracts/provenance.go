package contracts

import "time"

// Provenance is the write-once reproducibility record attached to every
// request. Two runs over identical findings and rule versions produce
// identical hashes, so clients can audit and caches can key on them.
type Provenance struct {
	RequestID        string            `json:"request_id"`
	PromptHash       string            `json:"prompt_hash"`
	SkillDocHashes   map[string]string `json:"skill_doc_hashes"`
	FindingsHash     string            `json:"findings_hash"`
	RulesetHash      string            `json:"ruleset_hash"`
	DataVersion      string            `json:"data_version"`
	DataTimestamp    int64             `json:"data_timestamp"`
	SearchTimestamps []int64           `json:"search_timestamps,omitempty"`
	AgentsInvoked    []AgentID         `json:"agents_invoked"`
	AgentsSilent     []AgentID         `json:"agents_silent"`
	CacheHits        int               `json:"cache_hits"`
	CacheMisses      int               `json:"cache_misses"`
	Model            string            `json:"model"`
	Temperature      float64           `json:"temperature"`
}

// Matchup identifies the game under analysis.
type Matchup struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// RunRecord is the persisted snapshot of one completed request.
type RunRecord struct {
	RequestID  string     `json:"request_id"`
	Matchup    Matchup    `json:"matchup"`
	Mode       string     `json:"mode"`
	Alerts     []Alert    `json:"alerts"`
	Scripts    []Script   `json:"scripts"`
	Ladders    []Ladder   `json:"ladders"`
	Provenance Provenance `json:"provenance"`
	TimingMS   int64      `json:"timing_ms"`
	Fallback   bool       `json:"fallback"`
	CreatedAt  time.Time  `json:"created_at"`
}

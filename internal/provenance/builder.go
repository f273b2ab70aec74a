package provenance

import (
	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
)

// Builder accumulates the reproducibility record for one request and
// seals it exactly once. Write-once: Seal returns a value copy, and the
// builder is not meant to be reused afterwards.
type Builder struct {
	rec    contracts.Provenance
	sealed bool
}

// NewBuilder starts a provenance record for a request.
func NewBuilder(requestID string, rc contracts.RunContext) *Builder {
	return &Builder{
		rec: contracts.Provenance{
			RequestID:      requestID,
			SkillDocHashes: make(map[string]string),
			DataVersion:    rc.DataVersion,
			DataTimestamp:  rc.DataTimestamp,
		},
	}
}

// SetPromptHash records the digest of the exact generator instruction text.
func (b *Builder) SetPromptHash(hash string) *Builder {
	b.rec.PromptHash = hash
	return b
}

// AddSkillDoc records one skill document's content hash.
func (b *Builder) AddSkillDoc(id, hash string) *Builder {
	b.rec.SkillDocHashes[id] = hash
	return b
}

// SetFindingsHash records the order-independent finding-set digest.
func (b *Builder) SetFindingsHash(hash string) *Builder {
	b.rec.FindingsHash = hash
	return b
}

// SetRuleset records the rule-version digest.
func (b *Builder) SetRuleset(hash string) *Builder {
	b.rec.RulesetHash = hash
	return b
}

// SetAgents records which detectors produced findings and which stayed silent.
func (b *Builder) SetAgents(invoked, silent []contracts.AgentID) *Builder {
	b.rec.AgentsInvoked = invoked
	b.rec.AgentsSilent = silent
	return b
}

// AddSearchTimestamp appends one external lookup timestamp.
func (b *Builder) AddSearchTimestamp(ts int64) *Builder {
	b.rec.SearchTimestamps = append(b.rec.SearchTimestamps, ts)
	return b
}

// CountCache bumps the hit/miss counters.
func (b *Builder) CountCache(hit bool) *Builder {
	if hit {
		b.rec.CacheHits++
	} else {
		b.rec.CacheMisses++
	}
	return b
}

// SetModel records the generator identity used for this request.
func (b *Builder) SetModel(model string, temperature float64) *Builder {
	b.rec.Model = model
	b.rec.Temperature = temperature
	return b
}

// Seal finalizes the record. Further mutation attempts panic, which
// would indicate a handler bug rather than a recoverable condition.
func (b *Builder) Seal() contracts.Provenance {
	if b.sealed {
		panic("provenance: record sealed twice")
	}
	b.sealed = true
	if b.rec.AgentsInvoked == nil {
		b.rec.AgentsInvoked = []contracts.AgentID{}
	}
	if b.rec.AgentsSilent == nil {
		b.rec.AgentsSilent = []contracts.AgentID{}
	}
	return b.rec
}

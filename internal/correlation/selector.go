package correlation

import (
	"sort"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
)

// selectScripts ranks candidates by combined confidence and keeps at
// most MaxScripts of them. Ranking is stable, so rules earlier in the
// evaluation order win ties and the output is deterministic for a given
// alert set.
func (e *Engine) selectScripts(candidates []contracts.Script) []contracts.Script {
	if len(candidates) == 0 {
		return []contracts.Script{}
	}

	ranked := make([]contracts.Script, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedConfidence > ranked[j].CombinedConfidence
	})

	max := e.rules.MaxScripts
	if max < 1 {
		max = 1
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

package provenance

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
)

// Canonicalize renders a payload as canonical JSON: objects with keys in
// sorted order at every depth, regardless of struct field order or map
// insertion order. encoding/json already sorts map keys, so one decode
// into generic maps followed by a re-encode normalizes everything.
// json.Number keeps numeric literals byte-stable through the round trip.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize marshal: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize decode: %w", err)
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonicalize re-encode: %w", err)
	}
	return out, nil
}

// HashPayload computes the SHA256 hex digest of a payload's canonical
// JSON. Structurally equal payloads hash identically no matter how
// their keys were ordered.
func HashPayload(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HashText digests exact instruction text, byte for byte. Used for
// prompt hashes where whitespace is significant.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashFindings digests a finding set independent of emission order:
// findings are sorted by (agent, type, subject) before hashing so
// detector scheduling never perturbs the digest.
func HashFindings(findings []contracts.Finding) (string, error) {
	sorted := make([]contracts.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Agent != sorted[j].Agent {
			return sorted[i].Agent < sorted[j].Agent
		}
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Subject < sorted[j].Subject
	})
	return HashPayload(sorted)
}

// HashArtifact digests the constituent alert ids of a script or ladder
// together with the rule versions that produced it. The payload is
// strings all the way down, so hashing cannot fail.
func HashArtifact(alertIDs []string, rulesetID, rulesetVersion string) string {
	ids := make([]string, len(alertIDs))
	copy(ids, alertIDs)
	sort.Strings(ids)
	hash, _ := HashPayload(map[string]any{
		"alert_ids":       ids,
		"ruleset_id":      rulesetID,
		"ruleset_version": rulesetVersion,
	})
	return hash
}

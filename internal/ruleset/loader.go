package ruleset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a ruleset YAML file. KnownFields(true) makes typos and
// stale fields fail loudly instead of silently falling back to zero.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rs RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return nil, err
	}

	if err := Validate(&rs); err != nil {
		return nil, err
	}

	return &rs, nil
}

// Hash produces the ruleset's provenance hash from canonical JSON.
// Structs marshal in declaration order, so the hash is reproducible
// across processes for identical rule values.
func Hash(rs *RuleSet) (string, error) {
	jsonBytes, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

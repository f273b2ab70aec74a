package generator

import (
	"fmt"
	"strings"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/provenance"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
)

// BuildPrompt renders the deterministic prompt for one run. The same
// matchup, alerts, memory, and ruleset always produce the same bytes,
// so the prompt hash in provenance is reproducible.
func BuildPrompt(matchup contracts.Matchup, alerts []contracts.Alert, memory map[string]interface{}, meta ruleset.Meta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Matchup: %s at %s\n", matchup.Away, matchup.Home)
	fmt.Fprintf(&b, "Ruleset: %s %s\n\n", meta.RulesetID, meta.Version)

	b.WriteString("Alerts:\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "- [%s] %s (%s, confidence %.2f): %s\n",
			a.Agent, a.Subject, a.Severity, a.Confidence, a.Rationale)
	}
	if len(alerts) == 0 {
		b.WriteString("- none\n")
	}

	// Memory goes through the canonical encoder so key order cannot
	// change the prompt bytes.
	b.WriteString("\nProfile memory:\n")
	canonical, err := provenance.Canonicalize(memory)
	if err != nil {
		canonical = []byte("{}")
	}
	b.Write(canonical)
	b.WriteString("\n")

	b.WriteString("\nRespond with JSON only: {assumptions: {game_total, notes}, scripts: [{legs: [{market, selection, odds}], stake, payout, explanation}], offer_opposite}.\n")
	fmt.Fprintf(&b, "Produce %d-%d scripts of %d-%d legs each. Stake is always 1.\n", minGenScripts, maxGenScripts, minGenScriptLegs, maxGenScriptLegs)
	fmt.Fprintf(&b, "Include both notes verbatim: %q and %q.\n", NoteUnitStake, NoteNotAdvice)
	fmt.Fprintf(&b, "Set offer_opposite verbatim to: %q.\n", OfferOpposite)

	return b.String()
}

// PromptHash is the canonical hash of the prompt text.
func PromptHash(prompt string) string {
	return provenance.HashText(prompt)
}

// SkillDocs returns the fixed instruction documents shipped with every
// prompt, keyed by doc id. Their hashes go into provenance so a change
// to any instruction text is visible in the audit record.
func SkillDocs() map[string]string {
	return map[string]string{
		"output_schema": "JSON only: {assumptions: {game_total, notes}, scripts: [{legs: [{market, selection, odds}], stake, payout, explanation}], offer_opposite}",
		"staking_policy": NoteUnitStake + "\n" +
			NoteNotAdvice + "\n" +
			OfferOpposite,
	}
}

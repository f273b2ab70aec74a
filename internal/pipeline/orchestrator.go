package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KingJoefa/AFBParley-sub002/internal/agents"
	"github.com/KingJoefa/AFBParley-sub002/internal/alerts"
	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/correlation"
	"github.com/KingJoefa/AFBParley-sub002/internal/generator"
	"github.com/KingJoefa/AFBParley-sub002/internal/legguard"
	"github.com/KingJoefa/AFBParley-sub002/internal/provenance"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/internal/tiering"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Run modes. Deterministic runs never touch the model backend;
// generated runs try it and fall back to the deterministic scripts on
// any recoverable failure.
const (
	ModeDeterministic = "deterministic"
	ModeGenerated     = "generated"
)

// Request is one analysis request after transport-level validation.
type Request struct {
	Matchup          contracts.Matchup
	Stats            *contracts.MatchupStats
	Profile          string
	Mode             string
	RunContext       contracts.RunContext
	SearchTimestamps []int64
}

// Result is the run record plus non-fatal warnings collected along the
// way.
type Result struct {
	Record   contracts.RunRecord
	Warnings []string
}

// Orchestrator runs the full pipeline: detectors, aggregation,
// correlation, tiering, optional generation, provenance. Stages are
// pure, so one orchestrator serves concurrent requests.
type Orchestrator struct {
	registry   *agents.Registry
	aggregator *alerts.Aggregator
	correlator *correlation.Engine
	tiering    *tiering.Engine
	guard      *legguard.Guard
	profiles   contracts.ProfileStore
	gen        *generator.Client
	rules      *ruleset.RuleSet
	ruleHash   string
	logger     *logger.Logger
}

// New wires the pipeline against one ruleset. The generator client may
// be nil; every request then runs deterministic.
func New(rs *ruleset.RuleSet, profiles contracts.ProfileStore, gen *generator.Client, log *logger.Logger) (*Orchestrator, error) {
	ruleHash, err := ruleset.Hash(rs)
	if err != nil {
		return nil, fmt.Errorf("hash ruleset: %w", err)
	}

	return &Orchestrator{
		registry:   agents.NewRegistry(rs, log),
		aggregator: alerts.NewAggregator(rs, log),
		correlator: correlation.NewEngine(rs, log),
		tiering:    tiering.NewEngine(rs, log),
		guard:      legguard.NewGuard(rs),
		profiles:   profiles,
		gen:        gen,
		rules:      rs,
		ruleHash:   ruleHash,
		logger:     log,
	}, nil
}

// Run executes one request. The context is checked between stages; a
// cancelled request aborts with ctx.Err(). Absent data flows through as
// empty slices, never as an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	requestID := uuid.NewString()

	log := o.logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"home":       req.Matchup.Home,
		"away":       req.Matchup.Away,
	})
	log.Info("Pipeline run started")

	prov := provenance.NewBuilder(requestID, req.RunContext)
	prov.SetRuleset(o.ruleHash)
	for _, ts := range req.SearchTimestamps {
		prov.AddSearchTimestamp(ts)
	}

	findings, invoked, silent, err := o.registry.RunAll(ctx, req.Stats, req.RunContext)
	if err != nil {
		return nil, err
	}
	prov.SetAgents(invoked, silent)

	findingsHash, err := provenance.HashFindings(findings)
	if err != nil {
		return nil, fmt.Errorf("hash findings: %w", err)
	}
	prov.SetFindingsHash(findingsHash)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	alertList := o.aggregator.Aggregate(findings)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scripts := o.correlator.Build(alertList)
	ladders := o.tiering.Build(alertList)

	memory := o.profiles.Get(req.Profile)
	prov.CountCache(len(memory) > 0)

	prompt := generator.BuildPrompt(req.Matchup, alertList, memory, o.rules.Meta)
	prov.SetPromptHash(generator.PromptHash(prompt))
	for id, doc := range generator.SkillDocs() {
		prov.AddSkillDoc(id, provenance.HashText(doc))
	}

	mode := ModeDeterministic
	fallback := false
	var warnings []string

	if req.Mode != ModeDeterministic && o.gen != nil && o.gen.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		model, temp := o.gen.Model()
		prov.SetModel(model, temp)

		generated, genErr := o.generate(ctx, prompt, alertList)
		switch {
		case genErr == nil:
			scripts = generated
			mode = ModeGenerated
		case generator.IsRecoverable(genErr):
			fallback = true
			warnings = append(warnings, genErr.Error())
			log.WithError(genErr).Warn("Generator failed, serving deterministic scripts")
		default:
			return nil, genErr
		}
	}

	record := contracts.RunRecord{
		RequestID:  requestID,
		Matchup:    req.Matchup,
		Mode:       mode,
		Alerts:     alertList,
		Scripts:    scripts,
		Ladders:    ladders,
		Provenance: prov.Seal(),
		TimingMS:   time.Since(start).Milliseconds(),
		Fallback:   fallback,
		CreatedAt:  time.Now().UTC(),
	}

	log.WithFields(map[string]interface{}{
		"mode":      record.Mode,
		"alerts":    len(record.Alerts),
		"scripts":   len(record.Scripts),
		"ladders":   len(record.Ladders),
		"timing_ms": record.TimingMS,
	}).Info("Pipeline run finished")

	return &Result{Record: record, Warnings: warnings}, nil
}

// generate calls the model and anchors its scripts back to this run's
// alerts. Output that cannot be anchored is treated like any other
// recoverable generator failure.
func (o *Orchestrator) generate(ctx context.Context, prompt string, alertList []contracts.Alert) ([]contracts.Script, error) {
	resp, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	out := make([]contracts.Script, 0, len(resp.Scripts))
	for i, gs := range resp.Scripts {
		script, err := o.anchorScript(gs, resp.Assumptions.GameTotal, alertList)
		if err != nil {
			return nil, &generator.GeneratorError{
				Op:          "anchor",
				Err:         fmt.Errorf("script %d: %w", i, err),
				Recoverable: true,
			}
		}
		out = append(out, *script)
	}
	return out, nil
}

// anchorScript maps one generated parlay onto contracts.Script: every
// leg must trace back to an alert from this run, and team-total legs
// are normalized against the stated game total before anything else.
func (o *Orchestrator) anchorScript(gs generator.GenScript, gameTotal float64, alertList []contracts.Alert) (*contracts.Script, error) {
	legs := make([]contracts.Leg, 0, len(gs.Legs))
	confs := make([]float64, 0, len(gs.Legs))

	for _, gl := range gs.Legs {
		anchor, ok := matchAlert(gl.Market, alertList)
		if !ok {
			return nil, fmt.Errorf("leg %q references no known alert", gl.Market)
		}
		legs = append(legs, contracts.Leg{
			AlertID:   anchor.ID,
			Agent:     anchor.Agent,
			Market:    gl.Market,
			Selection: gl.Selection,
		})
		confs = append(confs, anchor.Confidence)
	}

	legs = o.guard.Normalize(legs, &gameTotal)

	combined := 1.0
	for _, c := range confs {
		combined *= c
	}
	if combined > 1 {
		combined = 1
	}

	script := &contracts.Script{
		Legs:               legs,
		CorrelationType:    contracts.CorrelationPlayerStack,
		Explanation:        gs.Explanation,
		CombinedConfidence: combined,
		RiskLevel:          riskFor(combined),
		ProvenanceHash:     provenance.HashArtifact(alertIDsOf(legs), o.rules.Meta.RulesetID, o.rules.Meta.Version),
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

func riskFor(combined float64) contracts.RiskLevel {
	switch {
	case combined >= 0.7:
		return contracts.RiskConservative
	case combined >= 0.5:
		return contracts.RiskModerate
	default:
		return contracts.RiskAggressive
	}
}

// matchAlert finds the alert whose subject appears in the leg's market
// text, falling back to an exact market match. Generated markets quote
// the player or team name, so subject containment is the reliable
// signal.
func matchAlert(market string, alertList []contracts.Alert) (contracts.Alert, bool) {
	lower := strings.ToLower(market)
	for _, a := range alertList {
		if a.Subject != "" && strings.Contains(lower, strings.ToLower(a.Subject)) {
			return a, true
		}
	}
	for _, a := range alertList {
		if strings.EqualFold(a.Market, market) {
			return a, true
		}
	}
	return contracts.Alert{}, false
}

func alertIDsOf(legs []contracts.Leg) []string {
	ids := make([]string, len(legs))
	for i, leg := range legs {
		ids[i] = leg.AlertID
	}
	return ids
}

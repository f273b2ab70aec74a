package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/pipeline"
	"github.com/KingJoefa/AFBParley-sub002/internal/provenance"
	"github.com/KingJoefa/AFBParley-sub002/internal/realtime"
	"github.com/KingJoefa/AFBParley-sub002/internal/store"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// AnalyzeHandler runs the pipeline for one matchup request.
type AnalyzeHandler struct {
	orchestrator *pipeline.Orchestrator
	runs         *store.RunRepository
	hub          *realtime.Hub
	cache        runCache
	logger       *logger.Logger
}

// NewAnalyzeHandler creates the analyze handler. The run repository,
// hub, and cache may each be nil; persistence, notification, and
// caching then degrade to no-ops.
func NewAnalyzeHandler(orch *pipeline.Orchestrator, runs *store.RunRepository, hub *realtime.Hub, cache runCache, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		orchestrator: orch,
		runs:         runs,
		hub:          hub,
		cache:        cache,
		logger:       log,
	}
}

type analyzeRequest struct {
	Home          string                  `json:"home"`
	Away          string                  `json:"away"`
	Profile       string                  `json:"profile"`
	Mode          string                  `json:"mode"`
	DataVersion   string                  `json:"data_version"`
	DataTimestamp int64                   `json:"data_timestamp"`
	Stats         *contracts.MatchupStats `json:"stats"`
}

type agentsBlock struct {
	Invoked []contracts.AgentID `json:"invoked"`
	Silent  []contracts.AgentID `json:"silent"`
}

type analyzeResponse struct {
	Alerts     []contracts.Alert    `json:"alerts"`
	Mode       string               `json:"mode"`
	RequestID  string               `json:"request_id"`
	Matchup    contracts.Matchup    `json:"matchup"`
	Agents     agentsBlock          `json:"agents"`
	Provenance contracts.Provenance `json:"provenance"`
	TimingMS   int64                `json:"timing_ms"`
	Fallback   bool                 `json:"fallback,omitempty"`
	Warnings   []string             `json:"warnings,omitempty"`
	Scripts    []contracts.Script   `json:"scripts"`
	Ladders    []contracts.Ladder   `json:"ladders"`
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	if code, msg, ok := validateAnalyze(&req); !ok {
		writeError(w, http.StatusBadRequest, code, msg)
		return
	}

	if req.DataTimestamp == 0 {
		req.DataTimestamp = time.Now().Unix()
	}
	if req.DataVersion == "" {
		req.DataVersion = "unversioned"
	}

	// Identical requests hash to the same key, so a repeat of a pinned
	// request (explicit data_version and data_timestamp) is served from
	// cache without rerunning the pipeline.
	responseKey := ""
	if h.cache != nil {
		if hash, err := provenance.HashPayload(&req); err == nil {
			responseKey = redispkg.ResponseKey(hash)
			var cached analyzeResponse
			if found, err := h.cache.Get(r.Context(), responseKey, &cached); err == nil && found {
				h.logger.WithField("request_id", cached.RequestID).Debug("Analyze served from cache")
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	result, err := h.orchestrator.Run(r.Context(), pipeline.Request{
		Matchup: contracts.Matchup{Home: req.Home, Away: req.Away},
		Stats:   req.Stats,
		Profile: req.Profile,
		Mode:    req.Mode,
		RunContext: contracts.RunContext{
			DataTimestamp: req.DataTimestamp,
			DataVersion:   req.DataVersion,
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Client gone; nothing to write.
			h.logger.WithError(err).Debug("Analyze request cancelled")
			return
		}
		h.logger.WithError(err).Error("Pipeline run failed")
		writeError(w, http.StatusInternalServerError, "pipeline", "analysis failed")
		return
	}

	rec := result.Record

	resp := analyzeResponse{
		Alerts:     rec.Alerts,
		Mode:       rec.Mode,
		RequestID:  rec.RequestID,
		Matchup:    rec.Matchup,
		Agents:     agentsBlock{Invoked: rec.Provenance.AgentsInvoked, Silent: rec.Provenance.AgentsSilent},
		Provenance: rec.Provenance,
		TimingMS:   rec.TimingMS,
		Fallback:   rec.Fallback,
		Warnings:   result.Warnings,
		Scripts:    rec.Scripts,
		Ladders:    rec.Ladders,
	}
	if resp.Alerts == nil {
		resp.Alerts = []contracts.Alert{}
	}
	if resp.Scripts == nil {
		resp.Scripts = []contracts.Script{}
	}
	if resp.Ladders == nil {
		resp.Ladders = []contracts.Ladder{}
	}

	h.persistAndNotify(&rec, responseKey, &resp)

	writeJSON(w, http.StatusOK, resp)
}

// validateAnalyze rejects malformed requests before the pipeline sees
// them.
func validateAnalyze(req *analyzeRequest) (code, msg string, ok bool) {
	if req.Home == "" || req.Away == "" {
		return "validation", "home and away are required", false
	}
	if req.Home == req.Away {
		return "validation", "home and away must differ", false
	}
	if req.Stats == nil {
		return "validation", "stats block is required", false
	}
	switch req.Mode {
	case "", pipeline.ModeDeterministic, pipeline.ModeGenerated:
	default:
		return "validation", "mode must be deterministic or generated", false
	}
	return "", "", true
}

// persistAndNotify stores the run, caches the response under the
// request hash and the record under its request id, and broadcasts
// completion. All best effort: a failed side channel never fails the
// request.
func (h *AnalyzeHandler) persistAndNotify(rec *contracts.RunRecord, responseKey string, resp *analyzeResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if h.runs != nil {
		if err := h.runs.Save(ctx, rec); err != nil {
			h.logger.WithError(err).Warn("Failed to persist run")
		}
	}

	if h.cache != nil {
		if responseKey != "" {
			if err := h.cache.Set(ctx, responseKey, resp, redispkg.TTLMedium); err != nil {
				h.logger.WithError(err).Warn("Failed to cache response")
			}
		}
		if err := h.cache.Set(ctx, redispkg.RunKey(rec.RequestID), rec, redispkg.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Failed to cache run")
		}
	}

	if h.hub != nil {
		h.hub.NotifyRunCompleted(rec)
	}
}

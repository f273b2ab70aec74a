package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/store"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// RunsHandler serves persisted run snapshots.
type RunsHandler struct {
	runs   *store.RunRepository
	cache  runCache
	logger *logger.Logger
}

// NewRunsHandler creates the runs handler. A nil repository means
// persistence is disabled; a nil cache means every lookup hits the
// repository.
func NewRunsHandler(runs *store.RunRepository, cache runCache, log *logger.Logger) *RunsHandler {
	return &RunsHandler{runs: runs, cache: cache, logger: log}
}

// Get handles GET /api/runs/{id}. Fresh runs are served from the
// short-TTL cache written at analyze time; everything else falls
// through to postgres.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if h.cache != nil {
		var rec contracts.RunRecord
		if found, err := h.cache.Get(r.Context(), redispkg.RunKey(id), &rec); err == nil && found {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}

	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence_disabled", "run persistence is not configured")
		return
	}

	rec, err := h.runs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no run for that id")
			return
		}
		h.logger.WithError(err).Error("Failed to load run")
		writeError(w, http.StatusInternalServerError, "storage", "failed to load run")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

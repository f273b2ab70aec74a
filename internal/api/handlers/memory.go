package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// MemoryHandler exposes per-profile memory.
type MemoryHandler struct {
	store  contracts.ProfileStore
	logger *logger.Logger
}

// NewMemoryHandler creates the memory handler.
func NewMemoryHandler(store contracts.ProfileStore, log *logger.Logger) *MemoryHandler {
	return &MemoryHandler{store: store, logger: log}
}

type memoryResponse struct {
	Profile string                 `json:"profile"`
	Memory  map[string]interface{} `json:"memory"`
}

// Get handles GET /api/memory/{profile}. An unknown profile returns an
// empty object, not 404.
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := mux.Vars(r)["profile"]

	writeJSON(w, http.StatusOK, memoryResponse{
		Profile: profile,
		Memory:  h.store.Get(profile),
	})
}

// Put handles PUT /api/memory/{profile}. The body replaces the
// profile's memory; anything that is not a JSON object stores as an
// empty object. The response echoes what was actually stored.
func (h *MemoryHandler) Put(w http.ResponseWriter, r *http.Request) {
	profile := mux.Vars(r)["profile"]

	var body interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	stored := h.store.Set(profile, body)

	h.logger.WithFields(map[string]interface{}{
		"profile": profile,
		"keys":    len(stored),
	}).Debug("Profile memory updated")

	writeJSON(w, http.StatusOK, memoryResponse{
		Profile: profile,
		Memory:  stored,
	})
}

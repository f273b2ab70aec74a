package handlers

import (
	"net/http"
	"strconv"

	"github.com/KingJoefa/AFBParley-sub002/internal/external/schedule"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// ScheduleHandler serves the weekly slate. The refresh job keeps the
// cache warm; a cold lookup scrapes the source on demand and caches
// the result for the next caller.
type ScheduleHandler struct {
	client *schedule.Client
	cache  runCache
	logger *logger.Logger
}

// NewScheduleHandler creates the schedule handler.
func NewScheduleHandler(client *schedule.Client, cache runCache, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{client: client, cache: cache, logger: log}
}

type scheduleResponse struct {
	Season int             `json:"season"`
	Week   int             `json:"week"`
	Games  []schedule.Game `json:"games"`
}

// Get handles GET /api/schedule?season=&week=. Missing parameters fall
// back to the configured season and week.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusServiceUnavailable, "schedule_disabled", "schedule source is not configured")
		return
	}

	season, week := h.client.Fallback()

	q := r.URL.Query()
	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "validation", "season must be a positive integer")
			return
		}
		season = n
	}
	if v := q.Get("week"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "validation", "week must be a positive integer")
			return
		}
		week = n
	}

	key := redispkg.ScheduleKey(season, week)

	if h.cache != nil {
		var games []schedule.Game
		if found, err := h.cache.Get(r.Context(), key, &games); err == nil && found {
			writeJSON(w, http.StatusOK, scheduleResponse{Season: season, Week: week, Games: games})
			return
		}
	}

	games, err := h.client.FetchWeek(r.Context(), season, week)
	if err != nil {
		h.logger.WithError(err).Warn("Schedule fetch failed")
		writeError(w, http.StatusBadGateway, "schedule_unavailable", "could not fetch the weekly slate")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, games, redispkg.TTLDaily); err != nil {
			h.logger.WithError(err).Warn("Failed to cache schedule")
		}
	}

	writeJSON(w, http.StatusOK, scheduleResponse{Season: season, Week: week, Games: games})
}

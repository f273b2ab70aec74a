package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/internal/external/schedule"
	"github.com/KingJoefa/AFBParley-sub002/internal/pipeline"
	"github.com/KingJoefa/AFBParley-sub002/internal/profile"
	"github.com/KingJoefa/AFBParley-sub002/internal/ruleset"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
	redispkg "github.com/KingJoefa/AFBParley-sub002/pkg/redis"
)

// fakeCache is an in-memory runCache for handler tests.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}

func testRouter(t *testing.T) *mux.Router {
	t.Helper()

	profiles := profile.NewMemoryStore(10, 0, logger.NewNop())
	orch, err := pipeline.New(ruleset.Default(), profiles, nil, logger.NewNop())
	require.NoError(t, err)

	analyze := NewAnalyzeHandler(orch, nil, nil, nil, logger.NewNop())
	memory := NewMemoryHandler(profiles, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/analyze", analyze.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/api/memory/{profile}", memory.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/memory/{profile}", memory.Put).Methods(http.MethodPut)
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAnalyze_ValidationErrorShape(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing teams", `{"stats":{"home":{},"away":{}}}`},
		{"same team twice", `{"home":"Bills","away":"Bills","stats":{"home":{},"away":{}}}`},
		{"missing stats", `{"home":"Bills","away":"Dolphins"}`},
		{"bad mode", `{"home":"Bills","away":"Dolphins","mode":"vibes","stats":{"home":{},"away":{}}}`},
		{"not json", `over 44.5`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			// Error responses keep the alerts array so clients never
			// branch on shape.
			assert.JSONEq(t, `[]`, string(body["alerts"]))

			var errInfo struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(body["error"], &errInfo))
			assert.Equal(t, "validation", errInfo.Code)
			assert.NotEmpty(t, errInfo.Message)
		})
	}
}

func TestAnalyze_QuietMatchupStillWellFormed(t *testing.T) {
	router := testRouter(t)

	body := `{
		"home": "Buffalo Bills",
		"away": "Miami Dolphins",
		"data_version": "wk5",
		"stats": {
			"home": {"team": "Buffalo Bills"},
			"away": {"team": "Miami Dolphins"}
		}
	}`

	rr := doJSON(t, router, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Alerts    []interface{} `json:"alerts"`
		Scripts   []interface{} `json:"scripts"`
		Ladders   []interface{} `json:"ladders"`
		Mode      string        `json:"mode"`
		RequestID string        `json:"request_id"`
		Agents    struct {
			Invoked []string `json:"invoked"`
			Silent  []string `json:"silent"`
		} `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// Nothing fired, but every collection is present and empty.
	assert.NotNil(t, resp.Alerts)
	assert.Empty(t, resp.Alerts)
	assert.NotNil(t, resp.Scripts)
	assert.NotNil(t, resp.Ladders)
	assert.Equal(t, "deterministic", resp.Mode)
	assert.NotEmpty(t, resp.RequestID)
	assert.Len(t, resp.Agents.Silent, 7)
}

func TestAnalyze_SignalProducesAlerts(t *testing.T) {
	router := testRouter(t)

	body := `{
		"home": "Buffalo Bills",
		"away": "Miami Dolphins",
		"data_version": "wk5",
		"stats": {
			"home": {
				"team": "Buffalo Bills",
				"qb": {"player": "Josh Allen", "attempts": 420, "rating": 110, "yards_per_attempt": 8.5}
			},
			"away": {
				"team": "Miami Dolphins",
				"qb": {"player": "Tua Tagovailoa", "attempts": 380, "rating": 90, "yards_per_attempt": 6.5}
			},
			"weather": {"wind_mph": 19, "precip_prob": 0.1, "temp_f": 40}
		}
	}`

	rr := doJSON(t, router, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Alerts []struct {
			ID       string `json:"id"`
			Agent    string `json:"agent"`
			Severity string `json:"severity"`
		} `json:"alerts"`
		Scripts []struct {
			CorrelationType string `json:"correlation_type"`
		} `json:"scripts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Alerts, 2)
	assert.Equal(t, "qb:josh-allen", resp.Alerts[0].ID)
	assert.Equal(t, "high", resp.Alerts[0].Severity)
	assert.Equal(t, "weather:game", resp.Alerts[1].ID)

	require.NotEmpty(t, resp.Scripts)
	assert.Equal(t, "weather_cascade", resp.Scripts[0].CorrelationType)
}

func TestMemory_GetUnknownProfile(t *testing.T) {
	router := testRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/memory/ghost", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp memoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ghost", resp.Profile)
	assert.NotNil(t, resp.Memory)
	assert.Empty(t, resp.Memory)
}

func TestMemory_PutThenGet(t *testing.T) {
	router := testRouter(t)

	put := doJSON(t, router, http.MethodPut, "/api/memory/sharp", `{"lean":"unders","unit":1}`)
	require.Equal(t, http.StatusOK, put.Code)

	var stored memoryResponse
	require.NoError(t, json.Unmarshal(put.Body.Bytes(), &stored))
	assert.Equal(t, "unders", stored.Memory["lean"])

	get := doJSON(t, router, http.MethodGet, "/api/memory/sharp", "")
	require.Equal(t, http.StatusOK, get.Code)

	var fetched memoryResponse
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
	assert.Equal(t, stored.Memory, fetched.Memory)
}

func TestMemory_PutNonObjectStoresEmpty(t *testing.T) {
	router := testRouter(t)

	rr := doJSON(t, router, http.MethodPut, "/api/memory/odd", `[1,2,3]`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp memoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Memory)
	assert.Empty(t, resp.Memory)
}

func TestMemory_PutInvalidJSON(t *testing.T) {
	router := testRouter(t)

	rr := doJSON(t, router, http.MethodPut, "/api/memory/odd", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["alerts"]))
}

func TestAnalyze_RepeatRequestServedFromCache(t *testing.T) {
	cache := newFakeCache()
	profiles := profile.NewMemoryStore(10, 0, logger.NewNop())
	orch, err := pipeline.New(ruleset.Default(), profiles, nil, logger.NewNop())
	require.NoError(t, err)

	analyze := NewAnalyzeHandler(orch, nil, nil, cache, logger.NewNop())
	router := mux.NewRouter()
	router.HandleFunc("/api/analyze", analyze.Analyze).Methods(http.MethodPost)

	// Pinned data_version and data_timestamp make the request hash
	// byte-stable across calls.
	body := `{
		"home": "Buffalo Bills",
		"away": "Miami Dolphins",
		"data_version": "wk5",
		"data_timestamp": 1757000000,
		"stats": {
			"home": {"team": "Buffalo Bills"},
			"away": {"team": "Miami Dolphins"}
		}
	}`

	first := doJSON(t, router, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, router, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	// Every pipeline run mints a fresh request id, so an identical id
	// proves the second response came from the cache.
	assert.Equal(t, a.RequestID, b.RequestID)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// A different data snapshot misses and runs the pipeline again.
	changed := strings.Replace(body, "1757000000", "1757000060", 1)
	third := doJSON(t, router, http.MethodPost, "/api/analyze", changed)
	require.Equal(t, http.StatusOK, third.Code)

	var c struct {
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &c))
	assert.NotEqual(t, a.RequestID, c.RequestID)
}

func TestRuns_FreshRunServedFromCache(t *testing.T) {
	cache := newFakeCache()
	rec := contracts.RunRecord{
		RequestID: "req-123",
		Matchup:   contracts.Matchup{Home: "Buffalo Bills", Away: "Miami Dolphins"},
		Mode:      "deterministic",
	}
	require.NoError(t, cache.Set(context.Background(), redispkg.RunKey("req-123"), rec, 0))

	// No repository: only the cache can serve.
	handler := NewRunsHandler(nil, cache, logger.NewNop())
	router := mux.NewRouter()
	router.HandleFunc("/api/runs/{id}", handler.Get).Methods(http.MethodGet)

	rr := doJSON(t, router, http.MethodGet, "/api/runs/req-123", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got contracts.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "req-123", got.RequestID)
	assert.Equal(t, "Buffalo Bills", got.Matchup.Home)

	// A cache miss without a repository still reports persistence off.
	miss := doJSON(t, router, http.MethodGet, "/api/runs/ghost", "")
	assert.Equal(t, http.StatusServiceUnavailable, miss.Code)
}

func scheduleTestHandler(t *testing.T, baseURL string, cache runCache) *ScheduleHandler {
	t.Helper()
	cfg := &config.Config{
		Schedule: config.ScheduleConfig{
			BaseURL:        baseURL,
			FallbackSeason: 2025,
			FallbackWeek:   3,
		},
	}
	log := logger.NewNop()
	client := schedule.NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
	return NewScheduleHandler(client, cache, log)
}

func TestSchedule_ServedFromCache(t *testing.T) {
	cache := newFakeCache()
	games := []schedule.Game{
		{Matchup: contracts.Matchup{Home: "Buffalo Bills", Away: "Miami Dolphins"}},
	}
	require.NoError(t, cache.Set(context.Background(), redispkg.ScheduleKey(2025, 3), games, 0))

	// Unreachable source: a response proves the cache served.
	handler := scheduleTestHandler(t, "http://127.0.0.1:1", cache)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Season int `json:"season"`
		Week   int `json:"week"`
		Games  []struct {
			Matchup struct {
				Home string `json:"home"`
				Away string `json:"away"`
			} `json:"matchup"`
		} `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2025, resp.Season)
	assert.Equal(t, 3, resp.Week)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "Buffalo Bills", resp.Games[0].Matchup.Home)
}

func TestSchedule_FetchPopulatesCache(t *testing.T) {
	html := `<div class="game_summary"><table class="teams"><tbody>
		<tr><td><a>Miami Dolphins</a></td></tr>
		<tr><td><a>Buffalo Bills</a></td></tr>
	</tbody></table></div>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	cache := newFakeCache()
	handler := scheduleTestHandler(t, srv.URL, cache)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?season=2025&week=1", nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Games []struct {
			Matchup struct {
				Home string `json:"home"`
				Away string `json:"away"`
			} `json:"matchup"`
		} `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "Buffalo Bills", resp.Games[0].Matchup.Home)
	assert.Equal(t, "Miami Dolphins", resp.Games[0].Matchup.Away)

	// The fetch warms the cache for the next caller.
	var cached []schedule.Game
	found, err := cache.Get(context.Background(), redispkg.ScheduleKey(2025, 1), &cached)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, cached, 1)
}

func TestSchedule_BadQuery(t *testing.T) {
	handler := scheduleTestHandler(t, "http://127.0.0.1:1", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?week=zero", nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["alerts"]))
}

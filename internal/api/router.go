package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/KingJoefa/AFBParley-sub002/internal/api/handlers"
	"github.com/KingJoefa/AFBParley-sub002/internal/realtime"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(analyze *handlers.AnalyzeHandler, memory *handlers.MemoryHandler, runs *handlers.RunsHandler, sched *handlers.ScheduleHandler, hub *realtime.Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Run-completed event stream
	if hub != nil {
		r.HandleFunc("/ws", hub.HandleWS)
	}

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/analyze", analyze.Analyze).Methods("POST")
	api.HandleFunc("/memory/{profile}", memory.Get).Methods("GET")
	api.HandleFunc("/memory/{profile}", memory.Put).Methods("PUT")
	api.HandleFunc("/runs/{id}", runs.Get).Methods("GET")
	api.HandleFunc("/schedule", sched.Get).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(20), 40)))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "afb-parley-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"alerts": []interface{}{},
						"error": map[string]string{
							"code":    "internal",
							"message": "Internal server error",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware rejects requests over the process-wide budget.
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"alerts": []interface{}{},
					"error": map[string]string{
						"code":    "rate_limited",
						"message": "Too many requests",
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// runCache is the slice of pkg/redis.Cache the handlers consult before
// doing real work. A nil runCache disables caching; a cache over a
// disabled redis client behaves the same way.
type runCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// errorBody is the error payload. It still carries an empty alerts
// array so renderers never branch on success/failure shape.
type errorBody struct {
	Alerts []struct{} `json:"alerts"`
	Error  errorInfo  `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{
		Alerts: []struct{}{},
		Error:  errorInfo{Code: code, Message: message},
	})
}

package mcp

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Rows      int    `json:"rows"`
	Timestamp string `json:"timestamp"`
}

// RowCounter reports how many rows the loaded index holds. The combined
// store implements this via its Len method.
type RowCounter interface {
	Len() int
}

// NewHealthHandler creates an HTTP handler for the /health endpoint. The
// server is healthy once a non-empty index is loaded; an empty index answers
// 503 so orchestrators hold traffic until a corpus is available.
func NewHealthHandler(store RowCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := store.Len()

		response := HealthResponse{
			Rows:      rows,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")

		if rows == 0 {
			response.Status = "unhealthy"
			response.Index = "empty"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Index = "loaded"
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

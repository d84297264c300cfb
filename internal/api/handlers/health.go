// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness and the size of the station pool
type HealthHandler struct {
	startTime time.Time
	stations  StationFinder
}

// NewHealthHandler creates a health handler
func NewHealthHandler(stations StationFinder) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), stations: stations}
}

// Health returns service status and uptime
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"uptime":    time.Since(h.startTime).String(),
		"stations":  h.stations.Count(),
	})
}

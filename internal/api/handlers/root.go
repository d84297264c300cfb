package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "routemix",
		"description": "Multi-modal route planning that mixes taxi and subway legs",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /":                    "API information",
			"GET /api":                 "API information",
			"GET /health":              "Health check",
			"POST /api/routes/plan":    "Plan and rank routes between two points",
			"GET /api/routes/stations": "Stations along a route (originLng, originLat, destLng, destLat)",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}

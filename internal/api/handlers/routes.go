package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/randytsao24/routemix/internal/models"
	"github.com/randytsao24/routemix/internal/planner"
)

const maxPlanBodyBytes = 1 << 20

// RouteHandler serves route planning
type RouteHandler struct {
	planner  RoutePlanner
	stations StationFinder
}

// NewRouteHandler creates a route handler
func NewRouteHandler(p RoutePlanner, stations StationFinder) *RouteHandler {
	return &RouteHandler{planner: p, stations: stations}
}

type planRequest struct {
	Origin      models.GeoPoint `json:"origin"`
	Destination models.GeoPoint `json:"destination"`
	Time        string          `json:"time"`
	Preference  string          `json:"preference"`
	Options     planner.Options `json:"options"`
}

// Plan ranks candidate routes for a trip
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	set, err := h.planner.Plan(r.Context(), req)
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	case err != nil:
		slog.Error("planning failed", "request_id", r.Header.Get(RequestIDHeader), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to plan routes", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    set,
	})
}

// Stations lists the station pool the hybrid strategies draw from
func (h *RouteHandler) Stations(w http.ResponseWriter, r *http.Request) {
	var coords [4]float64
	for i, name := range []string{"originLng", "originLat", "destLng", "destLat"} {
		v, err := parseFloatParam(r, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		coords[i] = v
	}

	origin := models.GeoPoint{Lng: coords[0], Lat: coords[1]}
	destination := models.GeoPoint{Lng: coords[2], Lat: coords[3]}
	if !origin.HasCoordinates() || !destination.HasCoordinates() {
		writeError(w, http.StatusBadRequest, "Coordinates out of range", nil)
		return
	}

	stations, err := h.stations.StationsAlongRoute(r.Context(), origin, destination)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to find stations", err)
		return
	}
	if stations == nil {
		stations = []models.GeoPoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"stations": stations,
		"count":    len(stations),
	})
}

func (b planRequest) toRequest() (planner.Request, error) {
	pref, err := models.ParsePreference(b.Preference)
	if err != nil {
		return planner.Request{}, err
	}

	req := planner.Request{
		Origin:      b.Origin,
		Destination: b.Destination,
		Preference:  pref,
		Options:     b.Options,
	}
	if b.Time != "" {
		t, err := time.Parse(time.RFC3339, b.Time)
		if err != nil {
			return planner.Request{}, fmt.Errorf("%w: time must be RFC3339", models.ErrInvalidInput)
		}
		req.Time = t
	}
	return req, nil
}

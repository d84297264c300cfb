// Package models defines shared data types
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// GeoPoint identifies an origin, destination, or station
type GeoPoint struct {
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
	Name string  `json:"name"`
}

// HasCoordinates reports whether both coordinates were supplied and are in
// range. An exact (0, 0) counts as not supplied, since that is what an empty
// JSON point decodes to.
func (p GeoPoint) HasCoordinates() bool {
	if p.Lng == 0 && p.Lat == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Mode is the travel mode of a single segment
type Mode string

const (
	ModeTaxi   Mode = "taxi"
	ModeSubway Mode = "subway"
	ModeWalk   Mode = "walk"
)

// RouteType classifies an itinerary by its composition
type RouteType string

const (
	RouteSubway RouteType = "subway"
	RouteTaxi   RouteType = "taxi"
	RouteMixed  RouteType = "mixed"
)

// Preference selects the base weighting of the scoring engine
type Preference string

const (
	PreferTime    Preference = "time"
	PreferCost    Preference = "cost"
	PreferBalance Preference = "balance"
)

// ParsePreference maps a request value onto a Preference; empty means balance
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PreferBalance, nil
	case PreferTime, PreferCost, PreferBalance:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown preference %q", ErrInvalidInput, s)
	}
}

// Scenario is the coarse travel context of a request
type Scenario string

const (
	ScenarioRushToCatch Scenario = "rushToCatch"
	ScenarioLateNight   Scenario = "lateNight"
	ScenarioPeak        Scenario = "peak"
	ScenarioRoutine     Scenario = "routine"
)

// Segment is one leg of travel. Which fields are meaningful depends on Mode:
// taxi legs carry distance, cost and wait time; subway legs carry line and
// station count; walk legs carry distance and duration.
type Segment struct {
	Mode     Mode    `json:"type"`
	From     string  `json:"from,omitempty"`
	To       string  `json:"to,omitempty"`
	Line     string  `json:"line,omitempty"`
	Stations int     `json:"stations,omitempty"`
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // minutes, includes wait for taxi legs
	Cost     float64 `json:"cost"`
	WaitTime float64 `json:"waitTime,omitempty"` // minutes
}

// Itinerary is one complete route candidate
type Itinerary struct {
	ID            string    `json:"id"`
	Type          RouteType `json:"type"`
	Segments      []Segment `json:"segments"`
	TotalDuration float64   `json:"totalDuration"`
	TotalCost     float64   `json:"totalCost"`
	TotalDistance float64   `json:"totalDistance"`
}

// NewItinerary builds an itinerary whose type and totals are derived from its segments
func NewItinerary(id string, segments []Segment) Itinerary {
	it := Itinerary{ID: id, Segments: segments}
	for _, seg := range segments {
		it.TotalDuration += seg.Duration
		it.TotalCost += seg.Cost
		it.TotalDistance += seg.Distance
	}
	it.TotalDuration = Round1(it.TotalDuration)
	it.TotalCost = Round1(it.TotalCost)
	it.TotalDistance = math.Round(it.TotalDistance)
	it.Type = ClassifySegments(segments)
	return it
}

// ClassifySegments derives the route type from segment composition
func ClassifySegments(segments []Segment) RouteType {
	taxis := 0
	for _, seg := range segments {
		if seg.Mode == ModeTaxi {
			taxis++
		}
	}
	switch {
	case taxis == 0:
		return RouteSubway
	case taxis == 1 && len(segments) == 1:
		return RouteTaxi
	default:
		return RouteMixed
	}
}

// TransitLines returns the distinct line names of the itinerary's subway legs
func (it Itinerary) TransitLines() []string {
	var lines []string
	seen := make(map[string]bool)
	for _, seg := range it.Segments {
		if seg.Mode != ModeSubway || seg.Line == "" || seen[seg.Line] {
			continue
		}
		seen[seg.Line] = true
		lines = append(lines, seg.Line)
	}
	return lines
}

// DrivingEstimate is the provider's answer for a driving query
type DrivingEstimate struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// Scores holds the per-axis and composite scores of a candidate
type Scores struct {
	Time    float64 `json:"time"`
	Cost    float64 `json:"cost"`
	Comfort float64 `json:"comfort"`
	Total   float64 `json:"total"`
}

// Summary is a display-oriented digest of an itinerary
type Summary struct {
	Description  string  `json:"description"`
	TotalTime    int     `json:"totalTime"`
	TotalCost    float64 `json:"totalCost"`
	WalkDistance float64 `json:"walkDistance"`
}

// ScoredItinerary is an itinerary with its scores attached
type ScoredItinerary struct {
	Itinerary
	Scores  Scores   `json:"scores"`
	Summary Summary  `json:"summary"`
	Alerts  []string `json:"alerts,omitempty"`
}

// Recommendation is a selected itinerary with human-readable justifications
type Recommendation struct {
	ScoredItinerary
	Tags []string `json:"tags"`
}

// Meta describes how a recommendation set was produced
type Meta struct {
	Scenario        Scenario   `json:"scenario"`
	Preference      Preference `json:"preference"`
	TotalCandidates int        `json:"totalCandidates"`
	CalculatedAt    time.Time  `json:"calculatedAt"`
}

// RecommendationSet is the result of a planning request
type RecommendationSet struct {
	Recommended *Recommendation   `json:"recommended"`
	Fastest     *Recommendation   `json:"fastest"`
	Cheapest    *Recommendation   `json:"cheapest"`
	AllRoutes   []ScoredItinerary `json:"allRoutes"`
	Meta        Meta              `json:"meta"`
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

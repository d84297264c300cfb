package planner

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/randytsao24/routemix/internal/models"
)

var errUpstream = errors.New("upstream timeout")

func key(from, to models.GeoPoint) string {
	return from.Name + ">" + to.Name
}

// fakeTransit answers from a table keyed by "from>to" names. Pairs missing
// from the table get a single 30 minute, 20 km subway ride costing 5.
type fakeTransit struct {
	routes map[string][]models.Itinerary
	fail   map[string]bool
	calls  atomic.Int32
}

func (f *fakeTransit) TransitItineraries(_ context.Context, from, to models.GeoPoint) ([]models.Itinerary, error) {
	f.calls.Add(1)
	k := key(from, to)
	if f.fail[k] || f.fail["*"] {
		return nil, errUpstream
	}
	if its, ok := f.routes[k]; ok {
		return its, nil
	}
	return []models.Itinerary{subwayRide(from.Name, to.Name, 30, 5, 20000)}, nil
}

// fakeDriving answers from a table keyed by "from>to" names; missing pairs
// get a 5 km, 15 minute drive
type fakeDriving struct {
	estimates map[string]models.DrivingEstimate
	fail      map[string]bool
	calls     atomic.Int32
}

func (f *fakeDriving) DrivingEstimate(_ context.Context, from, to models.GeoPoint) (models.DrivingEstimate, error) {
	f.calls.Add(1)
	k := key(from, to)
	if f.fail[k] || f.fail["*"] {
		return models.DrivingEstimate{}, errUpstream
	}
	if est, ok := f.estimates[k]; ok {
		return est, nil
	}
	return models.DrivingEstimate{DistanceMeters: 5000, DurationMinutes: 15}, nil
}

type fakeStations struct {
	stations []models.GeoPoint
	err      error
}

func (f *fakeStations) StationsAlongRoute(context.Context, models.GeoPoint, models.GeoPoint) ([]models.GeoPoint, error) {
	return f.stations, f.err
}

type fakeAlerts struct {
	byLine map[string][]string
	err    error
}

func (f *fakeAlerts) AlertsForLines(context.Context, []string) (map[string][]string, error) {
	return f.byLine, f.err
}

func subwayRide(from, to string, minutes, cost, meters float64) models.Itinerary {
	return models.NewItinerary("", []models.Segment{
		{Mode: models.ModeSubway, Line: "Line 1", From: from, To: to, Stations: 6, Distance: meters, Duration: minutes, Cost: cost},
	})
}

func stationPool(names ...string) []models.GeoPoint {
	pool := make([]models.GeoPoint, len(names))
	for i, n := range names {
		pool[i] = models.GeoPoint{Lng: 116.3 + float64(i)*0.01, Lat: 39.9, Name: n}
	}
	return pool
}

func sumSegments(it models.Itinerary) (duration, cost, distance float64) {
	for _, s := range it.Segments {
		duration += s.Duration
		cost += s.Cost
		distance += s.Distance
	}
	return duration, cost, distance
}

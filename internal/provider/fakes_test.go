package provider

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/randytsao24/routemix/internal/models"
)

var errBackend = errors.New("backend down")

// stubProvider returns fixed answers and counts calls
type stubProvider struct {
	itineraries []models.Itinerary
	estimate    models.DrivingEstimate
	err         error
	calls       atomic.Int32
}

func (s *stubProvider) TransitItineraries(context.Context, models.GeoPoint, models.GeoPoint) ([]models.Itinerary, error) {
	s.calls.Add(1)
	return s.itineraries, s.err
}

func (s *stubProvider) DrivingEstimate(context.Context, models.GeoPoint, models.GeoPoint) (models.DrivingEstimate, error) {
	s.calls.Add(1)
	return s.estimate, s.err
}

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackend
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errBackend
}

func oneRide(minutes float64) []models.Itinerary {
	return []models.Itinerary{models.NewItinerary("", []models.Segment{
		{Mode: models.ModeSubway, Line: "Line 1", Distance: 9000, Duration: minutes, Cost: 4},
	})}
}

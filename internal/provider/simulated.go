package provider

import (
	"context"
	"math"

	"github.com/randytsao24/routemix/internal/location"
	"github.com/randytsao24/routemix/internal/models"
)

const (
	accessWalkMeters  = 600
	walkMetersPerMin  = 80
	subwayDetour      = 1.25
	subwaySpeedKmh    = 35
	roadDetour        = 1.35
	roadSpeedKmh      = 30
	subwayFareStepKm  = 20
	subwayFareTopBand = 32
)

// Simulated answers from great-circle geometry alone. It needs no network
// and always has a route, so it serves as the offline provider and as the
// fallback behind a real one.
type Simulated struct{}

// NewSimulated creates a simulated provider
func NewSimulated() *Simulated {
	return &Simulated{}
}

// TransitItineraries returns a single walk, subway, walk itinerary
func (s *Simulated) TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rideMeters := location.Distance(origin, destination) * subwayDetour
	walk := models.Round1(float64(accessWalkMeters) / walkMetersPerMin)

	segments := []models.Segment{
		{Mode: models.ModeWalk, From: origin.Name, Distance: accessWalkMeters, Duration: walk},
		{
			Mode:     models.ModeSubway,
			Stations: stationsFor(rideMeters),
			Distance: math.Round(rideMeters),
			Duration: models.Round1(rideMeters / 1000 / subwaySpeedKmh * 60),
			Cost:     SubwayFare(rideMeters),
		},
		{Mode: models.ModeWalk, To: destination.Name, Distance: accessWalkMeters, Duration: walk},
	}
	return []models.Itinerary{models.NewItinerary("", segments)}, nil
}

// DrivingEstimate returns a road distance and duration derived from the
// straight-line distance
func (s *Simulated) DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error) {
	if err := ctx.Err(); err != nil {
		return models.DrivingEstimate{}, err
	}

	meters := location.Distance(origin, destination) * roadDetour
	return models.DrivingEstimate{
		DistanceMeters:  math.Round(meters),
		DurationMinutes: models.Round1(meters / 1000 / roadSpeedKmh * 60),
	}, nil
}

// SubwayFare is the distance-banded Beijing subway fare for a ride
func SubwayFare(meters float64) float64 {
	km := meters / 1000
	switch {
	case km <= 6:
		return 3
	case km <= 12:
		return 4
	case km <= 22:
		return 5
	case km <= subwayFareTopBand:
		return 6
	default:
		return 6 + math.Ceil((km-subwayFareTopBand)/subwayFareStepKm)
	}
}

// roughly one stop every 1.5 km
func stationsFor(meters float64) int {
	return max(1, int(math.Round(meters/1500)))
}

package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/randytsao24/routemix/internal/models"
)

// Provider answers both kinds of query the planner makes
type Provider interface {
	TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error)
	DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error)
}

// Fallback answers from the secondary provider whenever the primary fails
type Fallback struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

// NewFallback creates a fallback provider
func NewFallback(primary, secondary Provider, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// TransitItineraries falls back on an error or an empty answer
func (f *Fallback) TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error) {
	itineraries, err := f.primary.TransitItineraries(ctx, origin, destination)
	if err == nil && len(itineraries) > 0 {
		return itineraries, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f.logger.Warn("primary provider failed, using fallback",
		"query", "transit", "origin", origin.Name, "destination", destination.Name, "error", err)
	return f.secondary.TransitItineraries(ctx, origin, destination)
}

// DrivingEstimate falls back on provider failures. A definite "no route"
// from the primary is passed through.
func (f *Fallback) DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error) {
	est, err := f.primary.DrivingEstimate(ctx, origin, destination)
	if err == nil || errors.Is(err, models.ErrNoRoute) {
		return est, err
	}
	if ctx.Err() != nil {
		return models.DrivingEstimate{}, ctx.Err()
	}

	f.logger.Warn("primary provider failed, using fallback",
		"query", "driving", "origin", origin.Name, "destination", destination.Name, "error", err)
	return f.secondary.DrivingEstimate(ctx, origin, destination)
}

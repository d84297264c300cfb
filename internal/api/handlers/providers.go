package handlers

import (
	"context"

	"github.com/randytsao24/routemix/internal/models"
	"github.com/randytsao24/routemix/internal/planner"
)

// RoutePlanner abstracts the planning engine for testability.
type RoutePlanner interface {
	Plan(ctx context.Context, req planner.Request) (models.RecommendationSet, error)
}

// StationFinder abstracts the station pool.
type StationFinder interface {
	StationsAlongRoute(ctx context.Context, origin, destination models.GeoPoint) ([]models.GeoPoint, error)
	Count() int
}

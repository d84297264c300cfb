package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/randytsao24/routemix/internal/cache"
	"github.com/randytsao24/routemix/internal/models"
)

// Cached memoizes provider answers in a cache.Store. Failures are never
// cached, and a broken store only costs a direct provider call.
type Cached struct {
	next   Provider
	store  cache.Store
	logger *slog.Logger
}

// NewCached wraps next with a cache
func NewCached(next Provider, store cache.Store, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, store: store, logger: logger}
}

// TransitItineraries implements Provider
func (c *Cached) TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error) {
	key := cacheKey("transit", origin, destination)

	var itineraries []models.Itinerary
	if c.load(ctx, key, &itineraries) {
		return itineraries, nil
	}

	itineraries, err := c.next.TransitItineraries(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, itineraries)
	return itineraries, nil
}

// DrivingEstimate implements Provider
func (c *Cached) DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error) {
	key := cacheKey("driving", origin, destination)

	var est models.DrivingEstimate
	if c.load(ctx, key, &est) {
		return est, nil
	}

	est, err := c.next.DrivingEstimate(ctx, origin, destination)
	if err != nil {
		return models.DrivingEstimate{}, err
	}
	c.save(ctx, key, est)
	return est, nil
}

func (c *Cached) load(ctx context.Context, key string, out any) bool {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cached) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// cacheKey rounds coordinates to about a meter so repeated queries for the
// same place share an entry
func cacheKey(kind string, origin, destination models.GeoPoint) string {
	return fmt.Sprintf("%s:%.5f,%.5f:%.5f,%.5f", kind, origin.Lng, origin.Lat, destination.Lng, destination.Lat)
}

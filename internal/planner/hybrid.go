package planner

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/randytsao24/routemix/internal/models"
)

// Strategy is one structural way of combining taxi and transit legs
type Strategy int

const (
	// StartTaxi rides a taxi to a station near the origin, then transit
	StartTaxi Strategy = iota
	// EndTaxi takes transit to a station near the destination, then a taxi
	EndTaxi
	// BothTaxi uses a taxi at both ends with transit in between
	BothTaxi
)

func (s Strategy) String() string {
	switch s {
	case StartTaxi:
		return "start_taxi"
	case EndTaxi:
		return "end_taxi"
	case BothTaxi:
		return "both_taxi"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

type legKind int

const (
	legTaxi legKind = iota
	legTransit
)

type leg struct {
	kind     legKind
	from, to models.GeoPoint
}

// candidatePlan is the shape of one hybrid candidate before any provider call
type candidatePlan struct {
	strategy Strategy
	id       string
	legs     []leg
}

// HybridGenerator combines taxi legs with transit legs through nearby stations
type HybridGenerator struct {
	transit  TransitProvider
	taxi     *taxiLegs
	settings Settings
}

func newHybridGenerator(transit TransitProvider, taxi *taxiLegs, settings Settings) *HybridGenerator {
	return &HybridGenerator{transit: transit, taxi: taxi, settings: settings}
}

// Generate builds every hybrid candidate for the station pool, which must be
// ordered nearest-to-origin first. Candidates come back in plan order; a
// failed leg drops only its own candidate and is reported in the error slice.
func (g *HybridGenerator) Generate(ctx context.Context, origin, destination models.GeoPoint, stations []models.GeoPoint, scenario models.Scenario) ([]models.Itinerary, []error) {
	plans := g.plans(origin, destination, stations)
	if len(plans) == 0 {
		return nil, nil
	}

	results := make([]*models.Itinerary, len(plans))
	var (
		mu   sync.Mutex
		errs []error
	)

	var eg errgroup.Group
	eg.SetLimit(g.settings.FanOut)
	for i, p := range plans {
		eg.Go(func() error {
			it, err := g.assemble(ctx, p, scenario)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.id, err))
				mu.Unlock()
				return nil
			}
			results[i] = &it
			return nil
		})
	}
	_ = eg.Wait()

	candidates := make([]models.Itinerary, 0, len(plans))
	for _, it := range results {
		if it != nil {
			candidates = append(candidates, *it)
		}
	}
	return candidates, errs
}

func (g *HybridGenerator) plans(origin, destination models.GeoPoint, stations []models.GeoPoint) []candidatePlan {
	var plans []candidatePlan

	for _, s := range head(stations, g.settings.HybridStationLimit) {
		plans = append(plans, candidatePlan{
			strategy: StartTaxi,
			id:       hybridID(StartTaxi, s.Name),
			legs:     []leg{{legTaxi, origin, s}, {legTransit, s, destination}},
		})
	}

	for _, s := range tail(stations, g.settings.HybridStationLimit) {
		plans = append(plans, candidatePlan{
			strategy: EndTaxi,
			id:       hybridID(EndTaxi, s.Name),
			legs:     []leg{{legTransit, origin, s}, {legTaxi, s, destination}},
		})
	}

	for _, start := range head(stations, g.settings.BothTaxiStationLimit) {
		for _, end := range tail(stations, g.settings.BothTaxiStationLimit) {
			if start == end {
				continue
			}
			plans = append(plans, candidatePlan{
				strategy: BothTaxi,
				id:       hybridID(BothTaxi, start.Name, end.Name),
				legs:     []leg{{legTaxi, origin, start}, {legTransit, start, end}, {legTaxi, end, destination}},
			})
		}
	}

	return plans
}

// assemble is the single composition routine shared by every strategy
func (g *HybridGenerator) assemble(ctx context.Context, p candidatePlan, scenario models.Scenario) (models.Itinerary, error) {
	var segments []models.Segment

	for _, l := range p.legs {
		switch l.kind {
		case legTaxi:
			seg, err := g.taxi.leg(ctx, l.from, l.to, scenario)
			if err != nil {
				return models.Itinerary{}, fmt.Errorf("taxi %s -> %s: %w", l.from.Name, l.to.Name, err)
			}
			segments = append(segments, seg)

		case legTransit:
			itineraries, err := g.transit.TransitItineraries(ctx, l.from, l.to)
			if err != nil {
				return models.Itinerary{}, fmt.Errorf("transit %s -> %s: %w", l.from.Name, l.to.Name, err)
			}
			if len(itineraries) == 0 {
				return models.Itinerary{}, fmt.Errorf("transit %s -> %s: %w", l.from.Name, l.to.Name, models.ErrNoRoute)
			}
			segments = append(segments, itineraries[0].Segments...)
		}
	}

	return models.NewItinerary(p.id, segments), nil
}

func hybridID(s Strategy, stations ...string) string {
	id := "hybrid_" + s.String()
	for _, name := range stations {
		id += "_" + name
	}
	return id
}

func head(stations []models.GeoPoint, k int) []models.GeoPoint {
	k = max(k, 0)
	if k > len(stations) {
		k = len(stations)
	}
	return stations[:k]
}

func tail(stations []models.GeoPoint, k int) []models.GeoPoint {
	k = max(k, 0)
	if k > len(stations) {
		k = len(stations)
	}
	return stations[len(stations)-k:]
}

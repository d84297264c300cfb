// Package planner generates, scores and recommends multi-modal trip candidates
package planner

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/randytsao24/routemix/internal/fare"
	"github.com/randytsao24/routemix/internal/models"
	"github.com/randytsao24/routemix/internal/scenario"
)

// TransitProvider returns transit itineraries between two points, best first
type TransitProvider interface {
	TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error)
}

// DrivingProvider returns a driving estimate, or models.ErrNoRoute when there is none
type DrivingProvider interface {
	DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error)
}

// StationSource supplies the station pool, ordered nearest-to-origin first
type StationSource interface {
	StationsAlongRoute(ctx context.Context, origin, destination models.GeoPoint) ([]models.GeoPoint, error)
}

// AlertSource returns active service alert headers keyed by transit line
type AlertSource interface {
	AlertsForLines(ctx context.Context, lines []string) (map[string][]string, error)
}

// Settings are the tunable limits of a planning pass
type Settings struct {
	HybridStationLimit   int
	BothTaxiStationLimit int
	MinTaxiLegMeters     float64
	MaxHybridCandidates  int
	TransitKeep          int
	MaxResults           int
	TaxiWaitMinutes      float64
	FanOut               int
	Currency             string
}

// DefaultSettings returns the standard limits
func DefaultSettings() Settings {
	return Settings{
		HybridStationLimit:   5,
		BothTaxiStationLimit: 2,
		MinTaxiLegMeters:     2000,
		MaxHybridCandidates:  10,
		TransitKeep:          3,
		MaxResults:           10,
		TaxiWaitMinutes:      5,
		FanOut:               4,
		Currency:             "¥",
	}
}

// Deps are the collaborators of a Planner. Stations and Alerts may be nil.
type Deps struct {
	Transit  TransitProvider
	Driving  DrivingProvider
	Stations StationSource
	Alerts   AlertSource
	Detector *scenario.Detector
	Fares    *fare.Estimator
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Options tweak a single request
type Options struct {
	DisableHybrid bool `json:"disableHybrid,omitempty"`
	MaxResults    int  `json:"maxResults,omitempty"`
}

// Request is the input of a planning call. A zero Time means now and an
// empty Preference means balance.
type Request struct {
	Origin      models.GeoPoint
	Destination models.GeoPoint
	Time        time.Time
	Preference  models.Preference
	Options     Options
}

// Planner sequences scenario detection, candidate generation, scoring and
// recommendation. It holds no per-request state and is safe for concurrent use.
type Planner struct {
	transit  TransitProvider
	stations StationSource
	alerts   AlertSource
	detector *scenario.Detector
	taxi     *taxiLegs
	hybrid   *HybridGenerator
	selector Selector
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a planner
func New(deps Deps, settings Settings) *Planner {
	if settings.FanOut < 1 {
		settings.FanOut = 1
	}
	if deps.Detector == nil {
		deps.Detector = scenario.NewDetector(nil, nil)
	}
	if deps.Fares == nil {
		deps.Fares = fare.NewEstimator(fare.DefaultTable())
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	taxi := &taxiLegs{driving: deps.Driving, fares: deps.Fares, waitMinutes: settings.TaxiWaitMinutes}
	return &Planner{
		transit:  deps.Transit,
		stations: deps.Stations,
		alerts:   deps.Alerts,
		detector: deps.Detector,
		taxi:     taxi,
		hybrid:   newHybridGenerator(deps.Transit, taxi, settings),
		selector: Selector{Currency: settings.Currency},
		settings: settings,
		logger:   deps.Logger,
		now:      deps.Clock,
	}
}

// Plan returns the ranked recommendation set for a trip. Only invalid input
// is an error; provider failures shrink the candidate set, down to zero.
func (p *Planner) Plan(ctx context.Context, req Request) (models.RecommendationSet, error) {
	if err := validate(req); err != nil {
		return models.RecommendationSet{}, err
	}
	if req.Time.IsZero() {
		req.Time = p.now()
	}
	if req.Preference == "" {
		req.Preference = models.PreferBalance
	}

	sc := p.detector.DetectAt(req.Origin, req.Destination, req.Time)

	candidates := p.generate(ctx, req, sc)
	scored := Score(candidates, req.Preference, sc)
	p.annotateAlerts(ctx, scored)

	recommended, fastest, cheapest := p.selector.Select(scored, sc)

	limit := p.settings.MaxResults
	if req.Options.MaxResults > 0 && req.Options.MaxResults < limit {
		limit = req.Options.MaxResults
	}

	return models.RecommendationSet{
		Recommended: recommended,
		Fastest:     fastest,
		Cheapest:    cheapest,
		AllRoutes:   rank(scored, limit),
		Meta: models.Meta{
			Scenario:        sc,
			Preference:      req.Preference,
			TotalCandidates: len(scored),
			CalculatedAt:    p.now(),
		},
	}, nil
}

func validate(req Request) error {
	if !req.Origin.HasCoordinates() {
		return fmt.Errorf("%w: origin coordinates missing or out of range", models.ErrInvalidInput)
	}
	if !req.Destination.HasCoordinates() {
		return fmt.Errorf("%w: destination coordinates missing or out of range", models.ErrInvalidInput)
	}
	switch req.Preference {
	case "", models.PreferTime, models.PreferCost, models.PreferBalance:
		return nil
	default:
		return fmt.Errorf("%w: unknown preference %q", models.ErrInvalidInput, req.Preference)
	}
}

// generate runs the three sub-strategies concurrently. Candidates keep a
// fixed order: pure transit, pure taxi, then hybrid.
func (p *Planner) generate(ctx context.Context, req Request, sc models.Scenario) []models.Itinerary {
	var (
		wg              sync.WaitGroup
		transit, hybrid []models.Itinerary
		taxi            *models.Itinerary
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		transit = p.pureTransit(ctx, req.Origin, req.Destination)
	}()
	go func() {
		defer wg.Done()
		taxi = p.pureTaxi(ctx, req.Origin, req.Destination, sc)
	}()
	go func() {
		defer wg.Done()
		if !req.Options.DisableHybrid {
			hybrid = p.hybridCandidates(ctx, req.Origin, req.Destination, sc)
		}
	}()
	wg.Wait()

	candidates := make([]models.Itinerary, 0, len(transit)+1+len(hybrid))
	candidates = append(candidates, transit...)
	if taxi != nil {
		candidates = append(candidates, *taxi)
	}
	return append(candidates, hybrid...)
}

func (p *Planner) pureTransit(ctx context.Context, origin, destination models.GeoPoint) []models.Itinerary {
	itineraries, err := p.transit.TransitItineraries(ctx, origin, destination)
	if err != nil {
		p.logger.Warn("transit candidates unavailable", "strategy", "subway", "error", err)
		return nil
	}

	if len(itineraries) > p.settings.TransitKeep {
		itineraries = itineraries[:p.settings.TransitKeep]
	}

	candidates := make([]models.Itinerary, 0, len(itineraries))
	for i, it := range itineraries {
		it.ID = fmt.Sprintf("subway_%d", i)
		it.Type = models.RouteSubway
		candidates = append(candidates, it)
	}
	return candidates
}

func (p *Planner) pureTaxi(ctx context.Context, origin, destination models.GeoPoint, sc models.Scenario) *models.Itinerary {
	seg, err := p.taxi.leg(ctx, origin, destination, sc)
	if err != nil {
		p.logger.Warn("taxi candidate unavailable", "strategy", "taxi", "error", err)
		return nil
	}
	it := models.NewItinerary("taxi_full", []models.Segment{seg})
	return &it
}

func (p *Planner) hybridCandidates(ctx context.Context, origin, destination models.GeoPoint, sc models.Scenario) []models.Itinerary {
	if p.stations == nil {
		return nil
	}
	stations, err := p.stations.StationsAlongRoute(ctx, origin, destination)
	if err != nil {
		p.logger.Warn("station pool unavailable", "strategy", "hybrid", "error", err)
		return nil
	}

	candidates, errs := p.hybrid.Generate(ctx, origin, destination, stations, sc)
	for _, err := range errs {
		p.logger.Warn("hybrid candidate unavailable", "strategy", "hybrid", "error", err)
	}

	return Prune(candidates, PruneRules{
		MinTaxiLegMeters: p.settings.MinTaxiLegMeters,
		Max:              p.settings.MaxHybridCandidates,
	})
}

func (p *Planner) annotateAlerts(ctx context.Context, scored []models.ScoredItinerary) {
	if p.alerts == nil || len(scored) == 0 {
		return
	}

	var lines []string
	for _, s := range scored {
		lines = append(lines, s.TransitLines()...)
	}
	if len(lines) == 0 {
		return
	}

	byLine, err := p.alerts.AlertsForLines(ctx, lines)
	if err != nil {
		p.logger.Warn("service alerts unavailable", "error", err)
		return
	}

	for i := range scored {
		for _, line := range scored[i].TransitLines() {
			scored[i].Alerts = append(scored[i].Alerts, byLine[line]...)
		}
	}
}

// rank orders candidates by composite score, highest first, keeping the
// original order among ties
func rank(scored []models.ScoredItinerary, limit int) []models.ScoredItinerary {
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b models.ScoredItinerary) int {
		return cmp.Compare(b.Scores.Total, a.Scores.Total)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []models.ScoredItinerary{}
	}
	return ranked
}

// taxiLegs prices taxi segments from driving estimates
type taxiLegs struct {
	driving     DrivingProvider
	fares       *fare.Estimator
	waitMinutes float64
}

func (t *taxiLegs) leg(ctx context.Context, from, to models.GeoPoint, sc models.Scenario) (models.Segment, error) {
	est, err := t.driving.DrivingEstimate(ctx, from, to)
	if err != nil {
		return models.Segment{}, err
	}

	drive := math.Round(est.DurationMinutes)
	return models.Segment{
		Mode:     models.ModeTaxi,
		From:     from.Name,
		To:       to.Name,
		Distance: math.Round(est.DistanceMeters),
		Duration: drive + t.waitMinutes,
		Cost:     t.fares.Estimate(est.DistanceMeters, drive, sc),
		WaitTime: t.waitMinutes,
	}, nil
}

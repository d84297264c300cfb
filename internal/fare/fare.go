// Package fare estimates taxi fares from distance and duration
package fare

import (
	"math"

	"github.com/randytsao24/routemix/internal/models"
)

// Table holds the fare constants of one city. Multipliers scale the fare for
// a scenario; scenarios without an entry pay the plain fare.
type Table struct {
	BaseFare      float64
	FreeKm        float64
	PerKmRate     float64
	PerMinuteRate float64
	Multipliers   map[models.Scenario]float64
}

// DefaultTable returns the Beijing fare table
func DefaultTable() Table {
	return Table{
		BaseFare:      13,
		FreeKm:        3,
		PerKmRate:     2.3,
		PerMinuteRate: 0.5,
		Multipliers: map[models.Scenario]float64{
			models.ScenarioPeak:      1.3,
			models.ScenarioLateNight: 1.5,
		},
	}
}

// Estimator converts a driving distance and duration into a fare
type Estimator struct {
	table Table
}

// NewEstimator creates an estimator for the given fare table
func NewEstimator(table Table) *Estimator {
	return &Estimator{table: table}
}

// Table returns the estimator's fare table
func (e *Estimator) Table() Table {
	return e.table
}

// Estimate returns the fare, rounded to one decimal, for a trip of the given
// length in meters and duration in minutes. Negative inputs count as zero so
// the result never drops below the base fare.
func (e *Estimator) Estimate(distanceMeters, durationMinutes float64, scenario models.Scenario) float64 {
	distanceKm := math.Max(0, distanceMeters) / 1000
	durationMinutes = math.Max(0, durationMinutes)

	cost := e.table.BaseFare +
		math.Max(0, distanceKm-e.table.FreeKm)*e.table.PerKmRate +
		durationMinutes*e.table.PerMinuteRate

	if m, ok := e.table.Multipliers[scenario]; ok && m > 0 {
		cost *= m
	}
	return models.Round1(math.Max(cost, e.table.BaseFare))
}

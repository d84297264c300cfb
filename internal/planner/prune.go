package planner

import (
	"cmp"
	"slices"

	"github.com/randytsao24/routemix/internal/models"
)

// PruneRules bound the hybrid candidate set before scoring
type PruneRules struct {
	// MinTaxiLegMeters drops candidates with a taxi leg this short or shorter
	MinTaxiLegMeters float64
	// Max is the number of survivors kept
	Max int
}

// Prune discards hybrid candidates with a taxi leg not worth the mode
// switch, then keeps the Max best by duration plus twice the cost.
func Prune(candidates []models.Itinerary, rules PruneRules) []models.Itinerary {
	survivors := make([]models.Itinerary, 0, len(candidates))
	for _, it := range candidates {
		if hasShortTaxiLeg(it, rules.MinTaxiLegMeters) {
			continue
		}
		survivors = append(survivors, it)
	}

	slices.SortStableFunc(survivors, func(a, b models.Itinerary) int {
		return cmp.Compare(pruneKey(a), pruneKey(b))
	})

	if rules.Max >= 0 && len(survivors) > rules.Max {
		survivors = survivors[:rules.Max]
	}
	return survivors
}

func pruneKey(it models.Itinerary) float64 {
	return it.TotalDuration + 2*it.TotalCost
}

func hasShortTaxiLeg(it models.Itinerary, minMeters float64) bool {
	for _, seg := range it.Segments {
		if seg.Mode == models.ModeTaxi && seg.Distance <= minMeters {
			return true
		}
	}
	return false
}

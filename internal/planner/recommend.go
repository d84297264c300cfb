package planner

import (
	"fmt"
	"math"

	"github.com/randytsao24/routemix/internal/models"
)

var scenarioReasons = map[models.Scenario]string{
	models.ScenarioRushToCatch: "Gets you to your train or flight on time",
	models.ScenarioLateNight:   "Comfortable and safe for a late-night trip",
	models.ScenarioPeak:        "Steers around rush-hour congestion",
}

const defaultReason = "Best overall value"

// Selector picks the fastest, cheapest and best-scoring candidates
type Selector struct {
	Currency string
}

// Select returns the recommended, fastest and cheapest candidates, each
// tagged with why it was picked. Ties go to the earlier candidate. All
// three are nil when there are no candidates.
func (s Selector) Select(scored []models.ScoredItinerary, sc models.Scenario) (recommended, fastest, cheapest *models.Recommendation) {
	if len(scored) == 0 {
		return nil, nil, nil
	}

	fast, slow, cheap, pricey, best := 0, 0, 0, 0, 0
	for i, it := range scored {
		if it.TotalDuration < scored[fast].TotalDuration {
			fast = i
		}
		if it.TotalDuration > scored[slow].TotalDuration {
			slow = i
		}
		if it.TotalCost < scored[cheap].TotalCost {
			cheap = i
		}
		if it.TotalCost > scored[pricey].TotalCost {
			pricey = i
		}
		if it.Scores.Total > scored[best].Scores.Total {
			best = i
		}
	}

	reason, ok := scenarioReasons[sc]
	if !ok {
		reason = defaultReason
	}
	recommended = tagged(scored[best], "Recommended", reason)

	fastest = tagged(scored[fast], "Fastest")
	if saved := math.Round(scored[slow].TotalDuration - scored[fast].TotalDuration); saved > 0 {
		fastest.Tags = append(fastest.Tags, fmt.Sprintf("Saves %d min vs the slowest option", int(saved)))
	}

	cheapest = tagged(scored[cheap], "Cheapest")
	if saved := models.Round1(scored[pricey].TotalCost - scored[cheap].TotalCost); saved > 0 {
		cheapest.Tags = append(cheapest.Tags, fmt.Sprintf("Saves %s%.1f vs the priciest option", s.Currency, saved))
	}

	return recommended, fastest, cheapest
}

func tagged(it models.ScoredItinerary, tags ...string) *models.Recommendation {
	return &models.Recommendation{ScoredItinerary: it, Tags: tags}
}

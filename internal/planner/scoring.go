package planner

import (
	"math"
	"strings"

	"github.com/randytsao24/routemix/internal/models"
)

// Weights are fractions summing to 1
type Weights struct {
	Time    float64
	Cost    float64
	Comfort float64
}

var preferenceWeights = map[models.Preference]Weights{
	models.PreferTime:    {Time: 0.7, Cost: 0.2, Comfort: 0.1},
	models.PreferCost:    {Time: 0.2, Cost: 0.7, Comfort: 0.1},
	models.PreferBalance: {Time: 0.4, Cost: 0.4, Comfort: 0.2},
}

// scenarioWeights replace the preference weights outright
var scenarioWeights = map[models.Scenario]Weights{
	models.ScenarioRushToCatch: {Time: 0.8, Cost: 0.1, Comfort: 0.1},
	models.ScenarioLateNight:   {Time: 0.4, Cost: 0.3, Comfort: 0.3},
}

const (
	transferPenalty   = 15
	walkPenaltyUnit   = 500 // meters
	walkPenalty       = 5
	waitPenaltyPerMin = 2
)

// WeightsFor returns the weights for a preference under a scenario
func WeightsFor(p models.Preference, s models.Scenario) Weights {
	if w, ok := scenarioWeights[s]; ok {
		return w
	}
	if w, ok := preferenceWeights[p]; ok {
		return w
	}
	return preferenceWeights[models.PreferBalance]
}

// Score rescales time and cost across the whole candidate set, adds a
// comfort score and blends the three into a composite in [0, 100]. The
// result is independent of candidate order.
func Score(candidates []models.Itinerary, p models.Preference, s models.Scenario) []models.ScoredItinerary {
	if len(candidates) == 0 {
		return nil
	}

	minTime, maxTime := candidates[0].TotalDuration, candidates[0].TotalDuration
	minCost, maxCost := candidates[0].TotalCost, candidates[0].TotalCost
	for _, it := range candidates[1:] {
		minTime = math.Min(minTime, it.TotalDuration)
		maxTime = math.Max(maxTime, it.TotalDuration)
		minCost = math.Min(minCost, it.TotalCost)
		maxCost = math.Max(maxCost, it.TotalCost)
	}

	w := WeightsFor(p, s)
	scored := make([]models.ScoredItinerary, 0, len(candidates))
	for _, it := range candidates {
		sc := models.Scores{
			Time:    normalize(it.TotalDuration, minTime, maxTime),
			Cost:    normalize(it.TotalCost, minCost, maxCost),
			Comfort: ComfortScore(it),
		}
		sc.Total = models.Round1(sc.Time*w.Time + sc.Cost*w.Cost + sc.Comfort*w.Comfort)

		scored = append(scored, models.ScoredItinerary{
			Itinerary: it,
			Scores:    sc,
			Summary:   summarize(it),
		})
	}
	return scored
}

// normalize maps the minimum to 100 and the maximum to 0
func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 100
	}
	return math.Round((hi - v) / (hi - lo) * 100)
}

// ComfortScore penalizes subway transfers, walking and taxi waits
func ComfortScore(it models.Itinerary) float64 {
	score := 100.0

	var walked, waited float64
	for i, seg := range it.Segments {
		if i > 0 && seg.Mode == models.ModeSubway && it.Segments[i-1].Mode == models.ModeSubway {
			score -= transferPenalty
		}
		switch seg.Mode {
		case models.ModeWalk:
			walked += seg.Distance
		case models.ModeTaxi:
			waited += seg.WaitTime
		}
	}

	score -= math.Floor(walked/walkPenaltyUnit) * walkPenalty
	score -= waited * waitPenaltyPerMin
	return math.Max(0, score)
}

func summarize(it models.Itinerary) models.Summary {
	steps := make([]string, 0, len(it.Segments))
	var walked float64
	for _, seg := range it.Segments {
		switch seg.Mode {
		case models.ModeTaxi:
			steps = append(steps, "Taxi")
		case models.ModeWalk:
			walked += seg.Distance
			steps = append(steps, "Walk")
		case models.ModeSubway:
			if seg.Line != "" {
				steps = append(steps, seg.Line)
			} else {
				steps = append(steps, "Subway")
			}
		}
	}

	return models.Summary{
		Description:  strings.Join(steps, " → "),
		TotalTime:    int(math.Round(it.TotalDuration)),
		TotalCost:    it.TotalCost,
		WalkDistance: math.Round(walked),
	}
}

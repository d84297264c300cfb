// Package scenario classifies a trip request into a travel context
package scenario

import (
	"strings"
	"time"

	"github.com/randytsao24/routemix/internal/models"
)

// DefaultHubKeywords mark destinations that are airports or railway stations
var DefaultHubKeywords = []string{
	"airport",
	"机场",
	"火车站",
	"高铁站",
	"railway station",
	"train station",
}

// Input is everything the detector looks at
type Input struct {
	OriginName      string
	DestinationName string
	LocalHour       int
}

// Detector classifies requests. It is safe for concurrent use.
type Detector struct {
	keywords []string
	location *time.Location
}

// NewDetector creates a detector that matches the given hub keywords
// (case-insensitive) and reads hours in loc. A nil loc means UTC.
func NewDetector(keywords []string, loc *time.Location) *Detector {
	if len(keywords) == 0 {
		keywords = DefaultHubKeywords
	}
	if loc == nil {
		loc = time.UTC
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Detector{keywords: lowered, location: loc}
}

// Detect returns exactly one scenario. Hub-bound trips win over any
// time-of-day rule.
func (d *Detector) Detect(in Input) models.Scenario {
	if d.isHub(in.DestinationName) {
		return models.ScenarioRushToCatch
	}

	h := in.LocalHour
	switch {
	case h >= 23 || h < 5:
		return models.ScenarioLateNight
	case (h >= 7 && h <= 9) || (h >= 17 && h <= 19):
		return models.ScenarioPeak
	default:
		return models.ScenarioRoutine
	}
}

// DetectAt classifies a trip departing at t, using the detector's time zone
func (d *Detector) DetectAt(origin, destination models.GeoPoint, t time.Time) models.Scenario {
	return d.Detect(Input{
		OriginName:      origin.Name,
		DestinationName: destination.Name,
		LocalHour:       t.In(d.location).Hour(),
	})
}

func (d *Detector) isHub(name string) bool {
	name = strings.ToLower(name)
	if name == "" {
		return false
	}
	for _, k := range d.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

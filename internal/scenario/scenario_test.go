package scenario

import (
	"testing"
	"time"

	"github.com/randytsao24/routemix/internal/models"
)

func TestDetect(t *testing.T) {
	d := NewDetector(nil, nil)

	tests := []struct {
		name string
		in   Input
		want models.Scenario
	}{
		{"airport beats late night", Input{DestinationName: "Capital Airport T3", LocalHour: 23}, models.ScenarioRushToCatch},
		{"chinese railway keyword", Input{DestinationName: "北京南火车站", LocalHour: 12}, models.ScenarioRushToCatch},
		{"airport origin is not hub-bound", Input{OriginName: "Airport", DestinationName: "ResidentialArea", LocalHour: 18}, models.ScenarioPeak},
		{"late night at 23", Input{DestinationName: "Home", LocalHour: 23}, models.ScenarioLateNight},
		{"late night at 0", Input{DestinationName: "Home", LocalHour: 0}, models.ScenarioLateNight},
		{"late night at 4", Input{DestinationName: "Home", LocalHour: 4}, models.ScenarioLateNight},
		{"routine at 5", Input{DestinationName: "Home", LocalHour: 5}, models.ScenarioRoutine},
		{"peak starts at 7", Input{DestinationName: "Office", LocalHour: 7}, models.ScenarioPeak},
		{"peak includes 9", Input{DestinationName: "Office", LocalHour: 9}, models.ScenarioPeak},
		{"routine at 10", Input{DestinationName: "Office", LocalHour: 10}, models.ScenarioRoutine},
		{"evening peak at 17", Input{DestinationName: "Home", LocalHour: 17}, models.ScenarioPeak},
		{"evening peak includes 19", Input{DestinationName: "Home", LocalHour: 19}, models.ScenarioPeak},
		{"routine at 20", Input{DestinationName: "Home", LocalHour: 20}, models.ScenarioRoutine},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.Detect(tc.in); got != tc.want {
				t.Errorf("Detect(%+v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDetectCustomKeywords(t *testing.T) {
	d := NewDetector([]string{"  Harbor "}, nil)

	if got := d.Detect(Input{DestinationName: "Ferry harbor", LocalHour: 12}); got != models.ScenarioRushToCatch {
		t.Errorf("Detect = %v, want rushToCatch", got)
	}
	if got := d.Detect(Input{DestinationName: "Capital Airport", LocalHour: 12}); got != models.ScenarioRoutine {
		t.Errorf("Detect = %v, want routine when airport is not a keyword", got)
	}
}

func TestDetectAtUsesLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	d := NewDetector(nil, shanghai)

	// 10:00 UTC is 18:00 in UTC+8
	departure := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	got := d.DetectAt(models.GeoPoint{Name: "Office"}, models.GeoPoint{Name: "Home"}, departure)
	if got != models.ScenarioPeak {
		t.Errorf("DetectAt = %v, want peak", got)
	}
}

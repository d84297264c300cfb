package location

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/randytsao24/routemix/internal/models"
)

const (
	// MaxAlongRoute caps the station pool handed to the hybrid generator
	MaxAlongRoute = 12

	detourFactor      = 1.3
	detourSlackMeters = 1000
)

// Station is one row of a GTFS stops.txt
type Station struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	LocationType  int     `json:"locationType"`
	ParentStation string  `json:"parentStation,omitempty"`
}

// Point returns the station as a GeoPoint
func (s Station) Point() models.GeoPoint {
	return models.GeoPoint{Lng: s.Lng, Lat: s.Lat, Name: s.Name}
}

// StationService manages subway station data
type StationService struct {
	stations []Station
	mu       sync.RWMutex
	loaded   bool
}

// NewStationService creates a new station service
func NewStationService() *StationService {
	return &StationService{}
}

// Load reads station data from a GTFS stops.txt file
func (s *StationService) Load(filepath string) error {
	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("opening stations file: %w", err)
	}
	defer file.Close()

	return s.LoadReader(file)
}

// LoadReader reads GTFS stops.txt rows. Columns are located by header name,
// so optional GTFS columns may appear in any order.
func (s *StationService) LoadReader(r io.Reader) error {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("stations file has no data rows")
	}

	col := make(map[string]int)
	for i, name := range records[0] {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"stop_id", "stop_name", "stop_lat", "stop_lon"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("stations file is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var stations []Station
	for _, record := range records[1:] {
		lat, err := strconv.ParseFloat(field(record, "stop_lat"), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(field(record, "stop_lon"), 64)
		if err != nil {
			continue
		}
		locationType, _ := strconv.Atoi(field(record, "location_type"))

		stations = append(stations, Station{
			ID:            field(record, "stop_id"),
			Name:          field(record, "stop_name"),
			Lat:           lat,
			Lng:           lng,
			LocationType:  locationType,
			ParentStation: field(record, "parent_station"),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = stations
	s.loaded = true
	return nil
}

// StationsAlongRoute returns stations that lie within a modest detour of the
// straight line between origin and destination, ordered by how far along
// the trip they sit. The head of the list is nearest the origin and the
// tail nearest the destination.
func (s *StationService) StationsAlongRoute(_ context.Context, origin, destination models.GeoPoint) ([]models.GeoPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	direct := Distance(origin, destination)
	limit := detourFactor*direct + detourSlackMeters

	type candidate struct {
		station  Station
		progress float64
	}
	var candidates []candidate

	for _, st := range s.pool() {
		p := st.Point()
		fromOrigin := Distance(origin, p)
		toDestination := Distance(p, destination)
		if fromOrigin+toDestination > limit {
			continue
		}

		progress := 0.0
		if total := fromOrigin + toDestination; total > 0 {
			progress = fromOrigin / total
		}
		candidates = append(candidates, candidate{station: st, progress: progress})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.progress, b.progress)
	})
	if len(candidates) > MaxAlongRoute {
		// keep both ends of the route
		front := (MaxAlongRoute + 1) / 2
		back := MaxAlongRoute - front
		candidates = append(candidates[:front:front], candidates[len(candidates)-back:]...)
	}

	points := make([]models.GeoPoint, len(candidates))
	for i, c := range candidates {
		points[i] = c.station.Point()
	}
	return points, nil
}

// pool returns parent stations when the feed has them, otherwise every stop
func (s *StationService) pool() []Station {
	var parents []Station
	for _, st := range s.stations {
		if st.LocationType == 1 {
			parents = append(parents, st)
		}
	}
	if len(parents) > 0 {
		return parents
	}
	return s.stations
}

// Count returns the number of stations in the pool
func (s *StationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pool())
}

// IsLoaded returns true if data has been loaded
func (s *StationService) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

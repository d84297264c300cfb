// Package provider implements the mapping-provider collaborators the planner
// calls for transit itineraries and driving estimates
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/randytsao24/routemix/internal/models"
)

const (
	transitPath = "/v3/direction/transit/integrated"
	drivingPath = "/v3/direction/driving"
)

// AMap queries the AMap web service for transit and driving directions
type AMap struct {
	apiKey  string
	baseURL string
	city    string
	client  *http.Client
}

// NewAMap creates a new AMap client
func NewAMap(apiKey, baseURL, city string, timeout time.Duration) *AMap {
	return &AMap{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		city:    city,
		client:  &http.Client{Timeout: timeout},
	}
}

// TransitItineraries returns the provider's transit options, best first.
// Bus and subway lines both become subway-mode segments and the whole fare
// is charged on the first of them.
func (a *AMap) TransitItineraries(ctx context.Context, origin, destination models.GeoPoint) ([]models.Itinerary, error) {
	params := url.Values{}
	params.Set("origin", coordinates(origin))
	params.Set("destination", coordinates(destination))
	params.Set("city", a.city)
	params.Set("cityd", a.city)

	var result transitResponse
	if err := a.get(ctx, transitPath, params, &result); err != nil {
		return nil, err
	}

	itineraries := make([]models.Itinerary, 0, len(result.Route.Transits))
	for _, t := range result.Route.Transits {
		itineraries = append(itineraries, t.itinerary())
	}
	return itineraries, nil
}

// DrivingEstimate returns the distance and duration of the provider's first
// driving path, or models.ErrNoRoute when it has none
func (a *AMap) DrivingEstimate(ctx context.Context, origin, destination models.GeoPoint) (models.DrivingEstimate, error) {
	params := url.Values{}
	params.Set("origin", coordinates(origin))
	params.Set("destination", coordinates(destination))

	var result drivingResponse
	if err := a.get(ctx, drivingPath, params, &result); err != nil {
		return models.DrivingEstimate{}, err
	}
	if len(result.Route.Paths) == 0 {
		return models.DrivingEstimate{}, fmt.Errorf("driving %s -> %s: %w", origin.Name, destination.Name, models.ErrNoRoute)
	}

	path := result.Route.Paths[0]
	return models.DrivingEstimate{
		DistanceMeters:  path.Distance.float(),
		DurationMinutes: minutes(path.Duration),
	}, nil
}

func (a *AMap) get(ctx context.Context, path string, params url.Values, out response) error {
	params.Set("key", a.apiKey)
	params.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %w", models.ErrProviderUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", models.ErrProviderUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: parsing %s response: %w", models.ErrProviderUnavailable, path, err)
	}
	return out.failure()
}

func coordinates(p models.GeoPoint) string {
	return strconv.FormatFloat(p.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
}

func minutes(seconds text) float64 {
	return math.Round(seconds.float() / 60)
}

// lineName drops the terminus suffix, e.g. "地铁10号线(巴沟--巴沟)" -> "地铁10号线"
func lineName(name string) string {
	if i := strings.IndexAny(name, "(（"); i > 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// AMap API response types

type response interface {
	failure() error
}

type envelope struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	InfoCode string `json:"infocode"`
}

func (e envelope) failure() error {
	if e.Status == "1" {
		return nil
	}
	return fmt.Errorf("%w: status %q: %s (%s)", models.ErrProviderUnavailable, e.Status, e.Info, e.InfoCode)
}

type transitResponse struct {
	envelope
	Route struct {
		Transits []amapTransit `json:"transits"`
	} `json:"route"`
}

type amapTransit struct {
	Cost     text          `json:"cost"`
	Duration text          `json:"duration"`
	Distance text          `json:"distance"`
	Segments []amapSegment `json:"segments"`
}

type amapSegment struct {
	Walking object[amapWalking] `json:"walking"`
	Bus     object[amapBus]     `json:"bus"`
}

type amapWalking struct {
	Distance text `json:"distance"`
	Duration text `json:"duration"`
}

type amapBus struct {
	Buslines []amapBusline `json:"buslines"`
}

type amapBusline struct {
	Name          text             `json:"name"`
	Type          text             `json:"type"`
	DepartureStop object[amapStop] `json:"departure_stop"`
	ArrivalStop   object[amapStop] `json:"arrival_stop"`
	ViaNum        text             `json:"via_num"`
	Distance      text             `json:"distance"`
	Duration      text             `json:"duration"`
}

type amapStop struct {
	Name text `json:"name"`
}

type drivingResponse struct {
	envelope
	Route struct {
		Paths []struct {
			Distance text `json:"distance"`
			Duration text `json:"duration"`
		} `json:"paths"`
	} `json:"route"`
}

func (t amapTransit) itinerary() models.Itinerary {
	fare := t.Cost.float()
	charged := false

	var segments []models.Segment
	for _, s := range t.Segments {
		if w, ok := s.Walking.get(); ok && w.Distance.float() > 0 {
			segments = append(segments, models.Segment{
				Mode:     models.ModeWalk,
				Distance: w.Distance.float(),
				Duration: minutes(w.Duration),
			})
		}

		bus, ok := s.Bus.get()
		if !ok || len(bus.Buslines) == 0 {
			continue
		}
		// alternatives follow the first line; only the first is ridden
		line := bus.Buslines[0]
		departure, _ := line.DepartureStop.get()
		arrival, _ := line.ArrivalStop.get()

		seg := models.Segment{
			Mode:     models.ModeSubway,
			Line:     lineName(string(line.Name)),
			From:     string(departure.Name),
			To:       string(arrival.Name),
			Stations: line.ViaNum.int() + 1,
			Distance: line.Distance.float(),
			Duration: minutes(line.Duration),
		}
		if !charged {
			seg.Cost = fare
			charged = true
		}
		segments = append(segments, seg)
	}

	addPlatformWait(segments, minutes(t.Duration))
	return models.NewItinerary("", segments)
}

// addPlatformWait charges the part of the provider's trip time that no leg
// accounts for (transfers, platform waits) to the first transit leg
func addPlatformWait(segments []models.Segment, total float64) {
	var sum float64
	for _, seg := range segments {
		sum += seg.Duration
	}
	residual := total - sum
	if residual <= 0 {
		return
	}
	for i := range segments {
		if segments[i].Mode == models.ModeSubway {
			segments[i].WaitTime += residual
			segments[i].Duration += residual
			return
		}
	}
}

// text is a string field the provider may also send as a bare number or as
// an empty array
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	case '[', '{', 'n':
		*t = ""
	default:
		*t = text(b)
	}
	return nil
}

func (t text) float() float64 {
	v, _ := strconv.ParseFloat(string(t), 64)
	return v
}

func (t text) int() int {
	v, _ := strconv.Atoi(string(t))
	return v
}

// object is a nested object the provider replaces with [] when empty
type object[T any] struct {
	value T
	ok    bool
}

func (o *object[T]) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.ok = true
	return nil
}

func (o object[T]) get() (T, bool) {
	return o.value, o.ok
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/randytsao24/routemix/internal/api"
	"github.com/randytsao24/routemix/internal/api/handlers"
	"github.com/randytsao24/routemix/internal/location"
	"github.com/randytsao24/routemix/internal/models"
	"github.com/randytsao24/routemix/internal/planner"
	"github.com/randytsao24/routemix/internal/provider"
	"github.com/randytsao24/routemix/internal/scenario"
)

// ---------------------------------------------------------------------------
// Mock providers
// ---------------------------------------------------------------------------

type mockPlanner struct {
	set   models.RecommendationSet
	err   error
	panic bool
}

func (m *mockPlanner) Plan(context.Context, planner.Request) (models.RecommendationSet, error) {
	if m.panic {
		panic("planner exploded")
	}
	return m.set, m.err
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

var beijing = time.FixedZone("CST", 8*3600)

func dataDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "../../data")
}

func loadStations(t *testing.T) *location.StationService {
	t.Helper()
	stations := location.NewStationService()
	if err := stations.Load(filepath.Join(dataDir(t), "stations.txt")); err != nil {
		t.Fatalf("load stations: %v", err)
	}
	return stations
}

// newTestServer wires the real planner to the offline simulated provider
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	stations := loadStations(t)
	sim := provider.NewSimulated()
	p := planner.New(planner.Deps{
		Transit:  sim,
		Driving:  sim,
		Stations: stations,
		Detector: scenario.NewDetector(nil, beijing),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, planner.DefaultSettings())

	server := httptest.NewServer(api.NewRouter(p, stations))
	t.Cleanup(server.Close)
	return server
}

func newMockServer(t *testing.T, p handlers.RoutePlanner) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(api.NewRouter(p, loadStations(t)))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func post(t *testing.T, server *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return m
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

func assertSuccess(t *testing.T, body map[string]any) {
	t.Helper()
	if body["success"] != true {
		t.Errorf("expected success=true, body: %v", body)
	}
}

func assertField(t *testing.T, body map[string]any, field string) {
	t.Helper()
	if _, ok := body[field]; !ok {
		t.Errorf("missing field %q in response: %v", field, body)
	}
}

// ---------------------------------------------------------------------------
// Health & root
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/health")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertField(t, body, "status")
	assertField(t, body, "uptime")

	if body["status"] != "OK" {
		t.Errorf("status = %v, want OK", body["status"])
	}
	if count, _ := body["stations"].(float64); count == 0 {
		t.Error("stations should be > 0")
	}
}

func TestAPIRoot(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/", "/api"} {
		resp := get(t, srv, path)
		assertStatus(t, resp, http.StatusOK)
		assertField(t, decodeBody(t, resp), "endpoints")
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/transit/nowhere")
	assertStatus(t, resp, http.StatusNotFound)
	assertField(t, decodeBody(t, resp), "error")
}

// ---------------------------------------------------------------------------
// Route planning
// ---------------------------------------------------------------------------

const airportTrip = `{
	"origin": {"lng": 116.6107, "lat": 40.0526, "name": "T3航站楼"},
	"destination": {"lng": 116.3536, "lat": 39.8516, "name": "ResidentialArea"},
	"time": "2025-03-14T18:00:00+08:00",
	"preference": "balance"
}`

func TestPlanRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/api/routes/plan", airportTrip)
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertSuccess(t, body)

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data should be an object: %v", body)
	}
	for _, field := range []string{"recommended", "fastest", "cheapest", "allRoutes", "meta"} {
		assertField(t, data, field)
	}

	meta := data["meta"].(map[string]any)
	if meta["scenario"] != "peak" || meta["preference"] != "balance" {
		t.Errorf("meta = %v", meta)
	}

	routes, ok := data["allRoutes"].([]any)
	if !ok || len(routes) == 0 {
		t.Fatal("expected ranked routes")
	}
	types := map[string]bool{}
	for _, r := range routes {
		route := r.(map[string]any)
		types[route["type"].(string)] = true
		assertField(t, route, "scores")
		assertField(t, route, "summary")
	}
	// the pure taxi ride may rank below the cut, the others never do here
	for _, want := range []string{"subway", "mixed"} {
		if !types[want] {
			t.Errorf("no %s route among %v", want, types)
		}
	}
	if total, _ := meta["totalCandidates"].(float64); total < 3 {
		t.Errorf("totalCandidates = %v, want hybrids alongside the pure routes", total)
	}

	rec := data["recommended"].(map[string]any)
	if tags, _ := rec["tags"].([]any); len(tags) == 0 || tags[0] != "Recommended" {
		t.Errorf("recommended tags = %v", rec["tags"])
	}
}

func TestPlanRoutesOptions(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/api/routes/plan", `{
		"origin": {"lng": 116.6107, "lat": 40.0526},
		"destination": {"lng": 116.3536, "lat": 39.8516},
		"options": {"disableHybrid": true, "maxResults": 1}
	}`)
	assertStatus(t, resp, http.StatusOK)

	data := decodeBody(t, resp)["data"].(map[string]any)
	if routes := data["allRoutes"].([]any); len(routes) != 1 {
		t.Errorf("got %d routes, want 1", len(routes))
	}
	if total := data["meta"].(map[string]any)["totalCandidates"].(float64); total != 2 {
		t.Errorf("totalCandidates = %v, want 2 with hybrids disabled", total)
	}
}

func TestPlanRoutesValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"origin":`},
		{"missing origin", `{"destination": {"lng": 116.35, "lat": 39.85}}`},
		{"latitude out of range", `{"origin": {"lng": 116.6, "lat": 91}, "destination": {"lng": 116.35, "lat": 39.85}}`},
		{"unknown preference", `{"origin": {"lng": 116.6, "lat": 40.05}, "destination": {"lng": 116.35, "lat": 39.85}, "preference": "scenic"}`},
		{"bad time", `{"origin": {"lng": 116.6, "lat": 40.05}, "destination": {"lng": 116.35, "lat": 39.85}, "time": "6pm"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, srv, "/api/routes/plan", tc.body)
			assertStatus(t, resp, http.StatusBadRequest)

			body := decodeBody(t, resp)
			assertField(t, body, "error")
			if body["success"] != false {
				t.Errorf("expected success=false, body: %v", body)
			}
		})
	}
}

func TestPlanRoutesNoCandidates(t *testing.T) {
	srv := newMockServer(t, &mockPlanner{set: models.RecommendationSet{AllRoutes: []models.ScoredItinerary{}}})

	resp := post(t, srv, "/api/routes/plan", airportTrip)
	assertStatus(t, resp, http.StatusOK)

	data := decodeBody(t, resp)["data"].(map[string]any)
	if data["recommended"] != nil {
		t.Errorf("recommended = %v, want null", data["recommended"])
	}
	if routes, ok := data["allRoutes"].([]any); !ok || len(routes) != 0 {
		t.Errorf("allRoutes = %v, want []", data["allRoutes"])
	}
}

func TestPlanRoutesPlannerError(t *testing.T) {
	srv := newMockServer(t, &mockPlanner{err: errors.New("engine offline")})

	resp := post(t, srv, "/api/routes/plan", airportTrip)
	assertStatus(t, resp, http.StatusInternalServerError)
	assertField(t, decodeBody(t, resp), "error")
}

// ---------------------------------------------------------------------------
// Stations
// ---------------------------------------------------------------------------

func TestStationsAlongRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/routes/stations?originLng=116.6107&originLat=40.0526&destLng=116.3536&destLat=39.8516")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertSuccess(t, body)
	stations, ok := body["stations"].([]any)
	if !ok || len(stations) == 0 {
		t.Fatalf("expected stations, body: %v", body)
	}
	if len(stations) > location.MaxAlongRoute {
		t.Errorf("got %d stations, cap is %d", len(stations), location.MaxAlongRoute)
	}
}

func TestStationsValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing params", "/api/routes/stations?originLng=116.6"},
		{"not a number", "/api/routes/stations?originLng=east&originLat=40&destLng=116.3&destLat=39.8"},
		{"out of range", "/api/routes/stations?originLng=200&originLat=40&destLng=116.3&destLat=39.8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := get(t, srv, tc.path)
			assertStatus(t, resp, http.StatusBadRequest)
			resp.Body.Close()
		})
	}
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/health")
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "trip-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "trip-42" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/routes/plan", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	assertStatus(t, resp, http.StatusOK)
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRecovery(t *testing.T) {
	srv := newMockServer(t, &mockPlanner{panic: true})

	resp := post(t, srv, "/api/routes/plan", airportTrip)
	resp.Body.Close()
	assertStatus(t, resp, http.StatusInternalServerError)
}

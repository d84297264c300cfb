package api

import (
	"net/http"
	"time"

	"github.com/randytsao24/routemix/internal/api/handlers"
)

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(routes handlers.RoutePlanner, stations handlers.StationFinder) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(stations)
	rootHandler := handlers.NewRootHandler()
	routeHandler := handlers.NewRouteHandler(routes, stations)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("/", rootHandler.NotFound)

	// Planning routes
	mux.HandleFunc("POST /api/routes/plan", routeHandler.Plan)
	mux.HandleFunc("GET /api/routes/stations", routeHandler.Stations)

	// Apply middleware stack
	handler := Chain(mux,
		Recovery,
		RequestID,
		Logging,
		CORS,
		Timeout(15*time.Second),
	)

	return handler
}

// Package server wires HTTP handlers into a ServeMux for the Inklet relay.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inklet/inklet/internal/hub"
)

// SetupRoutes configures and returns a ServeMux serving the default hubs:
// health check, the two relay endpoints, Prometheus metrics, and the test
// page.
func SetupRoutes() *http.ServeMux {
	return SetupRoutesWith(drawHub, roomHub)
}

// SetupRoutesWith builds the mux against explicit hub instances. Tests use
// it to run isolated hubs side by side.
func SetupRoutesWith(draw, rooms *hub.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/draw", socketHandler(draw))
	mux.HandleFunc("/rooms", socketHandler(rooms))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/test", TestPageHandler)
	return mux
}

// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitaltrack/pulsehub/api/middleware"
	"github.com/vitaltrack/pulsehub/api/resources"
	"github.com/vitaltrack/pulsehub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.AuthMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, authConfig middleware.AuthConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAuthMiddleware(authConfig),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes. Ingestion authenticates with device credentials in
	// the gateway, not with a session token.
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/readings", r.resources.Readings.IngestReading).Methods(http.MethodPost)
	api.HandleFunc("/readings/integration", r.resources.Readings.IngestIntegrationReading).Methods(http.MethodPost)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Devices
	devices := protected.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("", r.resources.Devices.RegisterDevice).Methods(http.MethodPost)
	devices.HandleFunc("/{id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)

	// Readings (query side)
	protected.HandleFunc("/readings", r.resources.Readings.GetDayReadings).Methods(http.MethodGet)
	protected.HandleFunc("/readings/weekly-summary", r.resources.Readings.GetWeeklySummary).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

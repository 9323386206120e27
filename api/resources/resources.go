// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/hubservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Readings    *ReadingHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Devices:     &DeviceHandlers{hubservice: svc},
		Readings:    &ReadingHandlers{hubservice: svc},
		HealthCheck: handleHealth,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}

// Helper functions shared by the handlers

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondServiceError passes structured service errors through with their
// status and shields callers from raw internals otherwise.
func respondServiceError(w http.ResponseWriter, requestID string, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("request failed", err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

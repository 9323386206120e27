// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/api/middleware"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/hubservice"
	"github.com/vitaltrack/pulsehub/internal/models"
)

// ReadingHandlers encapsulates ingestion and query HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

var queryDecoder = schema.NewDecoder()

// readingView is the query-side shape of a sample: the owning device is
// implied by the caller's scope and never exposed per row.
type readingView struct {
	ID   string    `json:"id"`
	Ts   time.Time `json:"ts"`
	HR   float64   `json:"hr"`
	SpO2 float64   `json:"spo2"`
}

type dayQuery struct {
	Day string `schema:"day"`
}

// @Summary Ingest a reading (device secret)
// @Description Append one heart-rate/SpO2 sample authenticated by the
// @Description per-device secret in X-API-Key. Timestamps are epoch ms.
// @Tags readings
// @Accept json
// @Produce json
// @Param payload body models.IngestPayload true "Sample"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /readings [post]
func (h *ReadingHandlers) IngestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	secret := r.Header.Get("X-API-Key")

	var payload models.IngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	reading, err := h.hubservice.IngestBySecret(r.Context(), secret, &payload)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": reading.ID})
}

// @Summary Ingest a reading (integration key)
// @Description Append one sample authenticated by the shared integration
// @Description key in X-Integration-Key plus the device's hardware id.
// @Description Timestamps are epoch seconds.
// @Tags readings
// @Accept json
// @Produce json
// @Param payload body models.IngestPayload true "Sample with deviceId"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /readings/integration [post]
func (h *ReadingHandlers) IngestIntegrationReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	key := r.Header.Get("X-Integration-Key")

	var payload models.IngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	reading, err := h.hubservice.IngestByIntegrationKey(r.Context(), key, &payload)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": reading.ID})
}

// @Summary Get readings for a day
// @Description Readings across all of the caller's devices for the UTC
// @Description calendar day, ascending by timestamp.
// @Tags readings
// @Produce json
// @Param day query string true "Calendar date (YYYY-MM-DD)"
// @Success 200 {array} readingView
// @Failure 400 {object} errors.APIError
// @Router /readings [get]
// @Security BearerAuth
func (h *ReadingHandlers) GetDayReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("missing credential", nil).WithRequestID(requestID))
		return
	}

	var query dayQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.DayView(r.Context(), identity.Email, query.Day)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	views := make([]readingView, 0, len(readings))
	for _, reading := range readings {
		views = append(views, readingView{
			ID:   reading.ID,
			Ts:   reading.Ts,
			HR:   reading.HR,
			SpO2: reading.SpO2,
		})
	}
	respondWithJSON(w, http.StatusOK, views)
}

// @Summary Get weekly summary
// @Description Per-day heart-rate avg/min/max for the trailing seven UTC
// @Description days across all of the caller's devices.
// @Tags readings
// @Produce json
// @Success 200 {array} models.DailySummary
// @Router /readings/weekly-summary [get]
// @Security BearerAuth
func (h *ReadingHandlers) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("missing credential", nil).WithRequestID(requestID))
		return
	}

	summaries, err := h.hubservice.WeeklySummary(r.Context(), identity.Email)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summaries)
}

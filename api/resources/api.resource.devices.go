// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/api/middleware"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/hubservice"
	"github.com/vitaltrack/pulsehub/internal/models"
)

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

type registerDeviceRequest struct {
	Name       string `json:"name"`
	ExternalID string `json:"externalId"`
}

// @Summary Register a new device
// @Description Register a wearable for the authenticated customer. The
// @Description response is the only place the device secret is exposed.
// @Tags devices
// @Accept json
// @Produce json
// @Param device body registerDeviceRequest true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /devices [post]
// @Security BearerAuth
func (h *DeviceHandlers) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	owner, ok := h.resolveCaller(w, r, requestID)
	if !ok {
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	device, err := h.hubservice.RegisterDevice(r.Context(), owner.ID, req.Name, req.ExternalID)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary List devices
// @Description List the authenticated customer's devices. Secrets are
// @Description withheld from the listing view.
// @Tags devices
// @Produce json
// @Success 200 {array} models.Device
// @Router /devices [get]
// @Security BearerAuth
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	owner, ok := h.resolveCaller(w, r, requestID)
	if !ok {
		return
	}

	devices, err := h.hubservice.ListDevicesByOwner(r.Context(), owner.ID)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, devices)
}

// @Summary Delete a device
// @Description Delete one of the authenticated customer's devices. A
// @Description foreign or unknown device id yields deleted: 0.
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} map[string]int64
// @Router /devices/{id} [delete]
// @Security BearerAuth
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["id"]
	requestID := nuts.NID("req", 12)

	owner, ok := h.resolveCaller(w, r, requestID)
	if !ok {
		return
	}

	deleted, err := h.hubservice.RemoveDevice(r.Context(), owner.ID, deviceID)
	if err != nil {
		respondServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// resolveCaller turns the request's verified identity into its customer
// record, writing the error response itself when that fails.
func (h *DeviceHandlers) resolveCaller(w http.ResponseWriter, r *http.Request, requestID string) (*models.Customer, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("missing credential", nil).WithRequestID(requestID))
		return nil, false
	}

	owner, err := h.hubservice.ResolveOwner(r.Context(), identity.Email)
	if err != nil {
		respondServiceError(w, requestID, err)
		return nil, false
	}
	return owner, true
}

// FilePath: internal/hubservice/hubservice.ingest.go
package hubservice

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	stderrors "errors"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// IngestBySecret accepts a sample authenticated by a per-device secret.
// The request moves through authentication, payload validation and append;
// any step failing terminates only this sample.
func (s *HubService) IngestBySecret(ctx context.Context, secret string, payload *models.IngestPayload) (*models.Reading, error) {
	if secret == "" {
		return nil, errors.NewAuthError("missing device secret", nil)
	}

	device, err := s.ResolveBySecret(ctx, secret)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewAuthError("unknown device secret", nil)
		}
		return nil, err
	}

	hr, spo2, err := validateSample(payload)
	if err != nil {
		return nil, err
	}

	// Device-secret protocol carries epoch milliseconds.
	ts, err := sampleTimestamp(payload.Ts, time.UnixMilli)
	if err != nil {
		return nil, err
	}

	return s.appendReading(ctx, device, hr, spo2, ts)
}

// IngestByIntegrationKey accepts a sample authenticated by the system-wide
// integration key plus the device's hardware identifier.
func (s *HubService) IngestByIntegrationKey(ctx context.Context, key string, payload *models.IngestPayload) (*models.Reading, error) {
	// An unset key disables this path entirely. Comparison is constant
	// time so the key cannot be probed byte by byte.
	if s.integrationKey == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(s.integrationKey)) != 1 {
		return nil, errors.NewAuthError("invalid integration key", nil)
	}

	if payload.DeviceID == "" {
		return nil, errors.NewValidationError("missing deviceId", nil)
	}

	device, err := s.ResolveByExternalID(ctx, payload.DeviceID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("device not registered", nil)
		}
		return nil, err
	}

	hr, spo2, err := validateSample(payload)
	if err != nil {
		return nil, err
	}

	// Integration protocol carries epoch seconds.
	ts, err := sampleTimestamp(payload.Ts, func(sec int64) time.Time {
		return time.Unix(sec, 0)
	})
	if err != nil {
		return nil, err
	}

	return s.appendReading(ctx, device, hr, spo2, ts)
}

func (s *HubService) appendReading(ctx context.Context, device *models.Device, hr, spo2 float64, ts time.Time) (*models.Reading, error) {
	reading := &models.Reading{
		ID:       nuts.NID("rd", 12),
		DeviceID: device.ID,
		Ts:       ts.UTC(),
		HR:       hr,
		SpO2:     spo2,
	}

	if err := s.Readings.Insert(ctx, reading); err != nil {
		return nil, err
	}

	nuts.L.Infof("[IngestionGateway] Appended reading %s for device %s", reading.ID, device.ID)
	return reading, nil
}

// validateSample requires hr and spo2 to be present and numeric. Type is
// the only constraint; value ranges are not checked.
func validateSample(payload *models.IngestPayload) (hr, spo2 float64, err error) {
	hr, ok := numericValue(payload.HR)
	if !ok {
		return 0, 0, errors.NewValidationError("hr must be a number", nil)
	}
	spo2, ok = numericValue(payload.SpO2)
	if !ok {
		return 0, 0, errors.NewValidationError("spo2 must be a number", nil)
	}
	return hr, spo2, nil
}

// sampleTimestamp converts an optional protocol timestamp with the given
// epoch interpretation, defaulting to ingestion time.
func sampleTimestamp(raw any, fromEpoch func(int64) time.Time) (time.Time, error) {
	if raw == nil {
		return time.Now().UTC(), nil
	}
	epoch, ok := numericValue(raw)
	if !ok {
		return time.Time{}, errors.NewValidationError("ts must be a numeric epoch value", nil)
	}
	return fromEpoch(int64(epoch)), nil
}

// numericValue accepts the shapes a JSON number can decode into.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

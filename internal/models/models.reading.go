// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading is a single heart-rate/SpO2 sample. Readings are append-only:
// no update and no user-initiated delete.
type Reading struct {
	ID       string    `json:"id" db:"id"`
	DeviceID string    `json:"device_id" db:"device_id"`
	Ts       time.Time `json:"ts" db:"ts"`
	HR       float64   `json:"hr" db:"hr"`
	SpO2     float64   `json:"spo2" db:"spo2"`
}

// DailySummary aggregates heart-rate values over one UTC calendar day.
type DailySummary struct {
	Date string  `json:"date" db:"date"`
	Avg  float64 `json:"avg" db:"avg"`
	Min  float64 `json:"min" db:"min"`
	Max  float64 `json:"max" db:"max"`
}

// IngestPayload is a decoded ingestion request body. HR, SpO2 and Ts stay
// untyped until the gateway validates them: a sample with hr "x" has to be
// rejected as an invalid payload, not as a transport-level decode failure.
type IngestPayload struct {
	DeviceID string `json:"deviceId,omitempty"`
	HR       any    `json:"hr"`
	SpO2     any    `json:"spo2"`
	Ts       any    `json:"ts,omitempty"`
}

// FilePath: internal/models/models.device.go
package models

import "time"

// Device is a registered wearable. Ownership is immutable after creation.
// The secret authorizes that device alone to ingest readings; it is shown
// once in the registration response and withheld from every other view
// (readxs restricts it to the system role).
type Device struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	Secret     string    `json:"secret,omitempty" db:"secret" readxs:"system" writexs:"system"`
	ExternalID string    `json:"external_id,omitempty" db:"external_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

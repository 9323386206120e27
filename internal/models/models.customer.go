// FilePath: internal/models/models.customer.go
package models

import "time"

// Customer is the identity anchor of the ownership chain. Accounts are
// created by the signup flow outside this service; the hub reads them to
// resolve a verified identity to its owned devices.
type Customer struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	LastAccess   time.Time `json:"last_access" db:"last_access"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

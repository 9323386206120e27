// FilePath: internal/repository/postgres/postgres.schema.go
package postgres

import (
	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/errors"
)

// InitializeSchema creates the customers and devices tables and the
// uniqueness constraints the ownership chain depends on. Secrets and
// external ids are unique only where present (empty means unassigned).
func InitializeSchema(db database.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			last_access TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			secret TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_owner ON devices(owner_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_devices_secret ON devices(secret)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_devices_external_id
			ON devices(external_id) WHERE external_id <> ''`,
	}

	for _, query := range queries {
		if _, err := db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize app schema", err)
		}
	}
	return nil
}

// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceRepo{PostgresBaseRepo: *repo}
}

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, owner_id, name, secret, external_id, created_at)
		VALUES (:id, :owner_id, :name, :secret, :external_id, :created_at)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, device)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return errors.NewDatabaseError("failed to create device", err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `SELECT * FROM devices WHERE owner_id = $1 ORDER BY created_at ASC`

	err := r.db.GetDB().SelectContext(ctx, &devices, query, ownerID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}
	return devices, nil
}

// DeleteOwned scopes the delete to the caller's own devices. A foreign or
// unknown device id affects zero rows, which is not an error here.
func (r *DeviceRepo) DeleteOwned(ctx context.Context, ownerID, deviceID string) (int64, error) {
	query := `DELETE FROM devices WHERE id = $1 AND owner_id = $2`

	result, err := r.db.GetDB().ExecContext(ctx, query, deviceID, ownerID)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}

func (r *DeviceRepo) GetBySecret(ctx context.Context, secret string) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE secret = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, secret)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get device by secret", err)
	}
	return device, nil
}

func (r *DeviceRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE external_id = $1 AND external_id <> ''`

	err := r.db.GetDB().GetContext(ctx, device, query, externalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get device by external id", err)
	}
	return device, nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a uniqueness constraint was violated
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// CustomerRepository defines the interface for customer data operations.
// Signup lives outside the hub; Create exists for seeding and tests.
type CustomerRepository interface {
	database.Repository
	Create(ctx context.Context, customer *models.Customer) error
	Get(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	UpdateLastAccess(ctx context.Context, id string, lastAccess time.Time) error
}

// DeviceRepository defines the interface for device data operations.
// Secret and external-id uniqueness is enforced by the store; Create
// reports a collision as ErrDuplicate.
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Device, error)
	// DeleteOwned removes a device only when it belongs to ownerID and
	// returns the number of rows removed (0 or 1). Deleting a foreign or
	// unknown device is a silent no-op, not an error.
	DeleteOwned(ctx context.Context, ownerID, deviceID string) (int64, error)
	GetBySecret(ctx context.Context, secret string) (*models.Device, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Device, error)
}

// ReadingRepository defines the interface for telemetry samples
type ReadingRepository interface {
	database.Repository
	Insert(ctx context.Context, reading *models.Reading) error
	// ListRange returns readings for the device set within [from, to),
	// ordered ascending by timestamp.
	ListRange(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.Reading, error)
	// DailyAggregate returns one avg/min/max row of heart-rate per UTC
	// calendar day present in [from, to), ordered ascending by date. Days
	// without readings produce no row.
	DailyAggregate(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.DailySummary, error)
	DeleteByDevice(ctx context.Context, deviceID string) error
}

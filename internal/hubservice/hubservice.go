// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/vitaltrack/pulsehub/internal/cache"
	"github.com/vitaltrack/pulsehub/internal/cleanup"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Customers   repository.CustomerRepository
	Devices     repository.DeviceRepository
	Readings    repository.ReadingRepository
	DeviceCache *cache.DeviceCache
	Cleanup     *cleanup.CleanupService

	// Shared integration key for the external-id ingestion path.
	// Loaded from config at startup; empty disables that path.
	integrationKey string
}

// New creates a new HubService instance
func New(
	customers repository.CustomerRepository,
	devices repository.DeviceRepository,
	readings repository.ReadingRepository,
	deviceCache *cache.DeviceCache,
	integrationKey string,
) *HubService {
	svc := &HubService{
		Customers:      customers,
		Devices:        devices,
		Readings:       readings,
		DeviceCache:    deviceCache,
		integrationKey: integrationKey,
	}
	svc.Cleanup = cleanup.New(devices, readings, deviceCache)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Customers == nil {
		return ErrMissingRepository("customers")
	}
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

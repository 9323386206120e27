// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/cache"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// CleanupService coordinates the cascade that follows a device removal:
// its readings are purged and its cached secret resolution is dropped, so
// the ownership chain never points at a deleted device.
type CleanupService struct {
	devices     repository.DeviceRepository
	readings    repository.ReadingRepository
	deviceCache *cache.DeviceCache
	events      *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	devices repository.DeviceRepository,
	readings repository.ReadingRepository,
	deviceCache *cache.DeviceCache,
) *CleanupService {
	return &CleanupService{
		devices:     devices,
		readings:    readings,
		deviceCache: deviceCache,
		events:      nuts.NewEventEmitter(),
	}
}

// PurgeDevice removes everything a deleted device left behind. The device
// row itself is already gone; this clears readings and cache.
func (s *CleanupService) PurgeDevice(ctx context.Context, device *models.Device) error {
	if err := s.readings.DeleteByDevice(ctx, device.ID); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}
	s.events.Emit("readings.purged", device.ID)

	if s.deviceCache != nil {
		if err := s.deviceCache.InvalidateSecret(ctx, device.Secret); err != nil {
			nuts.L.Warnf("[Cleanup] Failed to invalidate cached secret for device %s: %v", device.ID, err)
		}
	}

	s.events.Emit("device.deleted", device.ID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

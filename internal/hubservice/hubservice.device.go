// FilePath: internal/hubservice/hubservice.device.go
package hubservice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// deviceSecretBytes is the entropy of a generated device secret. 16 random
// bytes hex-encoded yield the 32-character secret devices present on ingest.
const deviceSecretBytes = 16

// RegisterDevice creates a device for ownerID with a server-generated
// secret. The returned device carries the secret; this is the only place
// it is ever exposed.
func (s *HubService) RegisterDevice(ctx context.Context, ownerID, name, externalID string) (*models.Device, error) {
	if name == "" {
		return nil, errors.NewValidationError("device name is required", nil)
	}

	secret, err := generateDeviceSecret()
	if err != nil {
		return nil, errors.NewInternalError("failed to generate device secret", err)
	}

	device := &models.Device{
		ID:         nuts.NID("dev", 12),
		OwnerID:    ownerID,
		Name:       name,
		Secret:     secret,
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Devices.Create(ctx, device); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			// An external-id collision is a caller mistake. A secret
			// collision would be a generation bug: 128 bits of entropy
			// make it practically impossible, the store enforces it anyway.
			if externalID != "" {
				if _, lookupErr := s.Devices.GetByExternalID(ctx, externalID); lookupErr == nil {
					return nil, errors.NewValidationError("external id already registered", err)
				}
			}
			nuts.L.Errorf("[DeviceRegistry] Device secret collision for owner %s", ownerID)
			return nil, errors.NewInternalError("device secret collision", err)
		}
		return nil, err
	}

	nuts.L.Infof("[DeviceRegistry] Registered device %s (%s) for owner %s", device.Name, device.ID, ownerID)
	return device, nil
}

// ListDevicesByOwner returns the owner's devices with the secret withheld.
// Secrets are readable only by the system role; the listing view filters
// them out via the readxs tags on the model.
func (s *HubService) ListDevicesByOwner(ctx context.Context, ownerID string) ([]*models.Device, error) {
	devices, err := s.Devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	roles := []string{"owner"}
	filtered := make([]*models.Device, 0, len(devices))
	for _, device := range devices {
		filteredMap, err := struccy.StructToMapFieldsWithReadXS(device, roles)
		if err != nil {
			nuts.L.Warnf("[DeviceRegistry] Failed to filter device %s: %v", device.ID, err)
			continue
		}
		view := &models.Device{}
		if _, err := struccy.MergeMapStringFieldsToStruct(view, filteredMap, roles); err != nil {
			nuts.L.Warnf("[DeviceRegistry] Failed to map filtered device %s: %v", device.ID, err)
			continue
		}
		filtered = append(filtered, view)
	}
	return filtered, nil
}

// RemoveDevice deletes a device scoped to the caller's ownership and
// returns the removed count (0 or 1). A foreign or unknown device id is a
// silent no-op so callers cannot probe for existence.
func (s *HubService) RemoveDevice(ctx context.Context, ownerID, deviceID string) (int64, error) {
	device, err := s.Devices.Get(ctx, deviceID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if device.OwnerID != ownerID {
		return 0, nil
	}

	deleted, err := s.Devices.DeleteOwned(ctx, ownerID, deviceID)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		if err := s.Cleanup.PurgeDevice(ctx, device); err != nil {
			nuts.L.Warnf("[DeviceRegistry] Partial cleanup failure for device %s: %v", deviceID, err)
		}
	}
	return deleted, nil
}

// ResolveBySecret maps a device secret to its device, consulting the
// cache before the store. Used by the ingestion gateway only.
func (s *HubService) ResolveBySecret(ctx context.Context, secret string) (*models.Device, error) {
	if s.DeviceCache != nil {
		device, err := s.DeviceCache.GetBySecret(ctx, secret)
		if err != nil {
			nuts.L.Warnf("[DeviceRegistry] Device cache lookup failed: %v", err)
		} else if device != nil {
			return device, nil
		}
	}

	device, err := s.Devices.GetBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}

	if s.DeviceCache != nil {
		if err := s.DeviceCache.SetBySecret(ctx, device); err != nil {
			nuts.L.Warnf("[DeviceRegistry] Device cache store failed: %v", err)
		}
	}
	return device, nil
}

// ResolveByExternalID maps a hardware identifier to its device, the
// alternate ingestion key for the shared integration-key path.
func (s *HubService) ResolveByExternalID(ctx context.Context, externalID string) (*models.Device, error) {
	return s.Devices.GetByExternalID(ctx, externalID)
}

func generateDeviceSecret() (string, error) {
	buf := make([]byte, deviceSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

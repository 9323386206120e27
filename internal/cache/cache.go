// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/config"
	"github.com/vitaltrack/pulsehub/internal/models"
)

const deviceBySecretPrefix = "pulsehub:device:bysecret:"

// DeviceCache keeps secret-to-device resolutions in Redis so the hot
// ingestion path does not hit Postgres on every sample. Entries expire
// after the configured TTL and are invalidated when a device is removed.
type DeviceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeviceCache(cfg config.RedisConfig, ttl time.Duration) *DeviceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &DeviceCache{client: client, ttl: ttl}
}

// NewDeviceCacheWithClient wires an existing client, used by tests.
func NewDeviceCacheWithClient(client *redis.Client, ttl time.Duration) *DeviceCache {
	return &DeviceCache{client: client, ttl: ttl}
}

// GetBySecret returns the cached device for a secret, or nil on a miss.
func (c *DeviceCache) GetBySecret(ctx context.Context, secret string) (*models.Device, error) {
	data, err := c.client.Get(ctx, deviceBySecretPrefix+secret).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	device := &models.Device{}
	if err := json.Unmarshal(data, device); err != nil {
		// A corrupt entry behaves like a miss; the store is authoritative.
		nuts.L.Warnf("[DeviceCache] Dropping corrupt cache entry: %v", err)
		c.client.Del(ctx, deviceBySecretPrefix+secret)
		return nil, nil
	}
	return device, nil
}

// SetBySecret stores a secret-to-device resolution with the cache TTL.
func (c *DeviceCache) SetBySecret(ctx context.Context, device *models.Device) error {
	data, err := json.Marshal(device)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, deviceBySecretPrefix+device.Secret, data, c.ttl).Err()
}

// InvalidateSecret removes a cached resolution, called on device removal.
func (c *DeviceCache) InvalidateSecret(ctx context.Context, secret string) error {
	return c.client.Del(ctx, deviceBySecretPrefix+secret).Err()
}

func (c *DeviceCache) Close() error {
	return c.client.Close()
}

func (c *DeviceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

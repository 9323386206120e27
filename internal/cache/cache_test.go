// FilePath: internal/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/pulsehub/internal/models"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *DeviceCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewDeviceCacheWithClient(client, 5*time.Minute)
}

func testDevice() *models.Device {
	return &models.Device{
		ID:        "dev_abc123",
		OwnerID:   "cus_alice",
		Name:      "watch-1",
		Secret:    "00112233445566778899aabbccddeeff",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDeviceCache_RoundTrip(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()
	device := testDevice()

	require.NoError(t, c.SetBySecret(ctx, device))

	cached, err := c.GetBySecret(ctx, device.Secret)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, device.ID, cached.ID)
	assert.Equal(t, device.OwnerID, cached.OwnerID)
	assert.Equal(t, device.Secret, cached.Secret)
}

func TestDeviceCache_MissReturnsNil(t *testing.T) {
	_, c := setupTestCache(t)

	cached, err := c.GetBySecret(context.Background(), "unknown-secret")

	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDeviceCache_InvalidateSecret(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()
	device := testDevice()

	require.NoError(t, c.SetBySecret(ctx, device))
	require.NoError(t, c.InvalidateSecret(ctx, device.Secret))

	cached, err := c.GetBySecret(ctx, device.Secret)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDeviceCache_EntriesExpire(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()
	device := testDevice()

	require.NoError(t, c.SetBySecret(ctx, device))
	mr.FastForward(6 * time.Minute)

	cached, err := c.GetBySecret(ctx, device.Secret)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDeviceCache_CorruptEntryBehavesLikeMiss(t *testing.T) {
	mr, c := setupTestCache(t)
	device := testDevice()

	require.NoError(t, mr.Set(deviceBySecretPrefix+device.Secret, "{not json"))

	cached, err := c.GetBySecret(context.Background(), device.Secret)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

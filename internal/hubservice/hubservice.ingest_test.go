// FilePath: internal/hubservice/hubservice.ingest_test.go
package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
)

// numericSample builds a payload the way the JSON decoder would: numbers
// arrive as float64.
func numericSample(hr, spo2 float64) *models.IngestPayload {
	return &models.IngestPayload{HR: hr, SpO2: spo2}
}

func TestIngestBySecret_AppendsReading(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	reading, err := svc.IngestBySecret(ctx, device.Secret, numericSample(72, 98))

	require.NoError(t, err)
	assert.NotEmpty(t, reading.ID)
	assert.Equal(t, device.ID, reading.DeviceID)
	assert.Equal(t, 72.0, reading.HR)
	assert.Equal(t, 98.0, reading.SpO2)
	assert.WithinDuration(t, time.Now().UTC(), reading.Ts, 5*time.Second)
}

func TestIngestBySecret_MissingSecret(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.IngestBySecret(context.Background(), "", numericSample(72, 98))

	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestIngestBySecret_UnknownSecret(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.IngestBySecret(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef", numericSample(72, 98))

	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	assert.Empty(t, store.readings)
}

func TestIngestBySecret_NonNumericHR(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	// Valid authentication does not rescue a malformed sample.
	payload := &models.IngestPayload{HR: "x", SpO2: 98.0}
	_, err = svc.IngestBySecret(ctx, device.Secret, payload)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, store.readings)
}

func TestIngestBySecret_MissingSpO2(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	payload := &models.IngestPayload{HR: 72.0}
	_, err = svc.IngestBySecret(ctx, device.Secret, payload)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, store.readings)
}

func TestIngestBySecret_EpochMillisTimestamp(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	payload := numericSample(72, 98)
	payload.Ts = float64(1736942400000) // 2025-01-15T12:00:00Z in ms
	reading, err := svc.IngestBySecret(ctx, device.Secret, payload)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), reading.Ts)
}

func TestIngestBySecret_NonNumericTimestamp(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	payload := numericSample(72, 98)
	payload.Ts = "yesterday"
	_, err = svc.IngestBySecret(ctx, device.Secret, payload)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestIngestByIntegrationKey_AppendsReading(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	_, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "hw-0001")
	require.NoError(t, err)

	payload := numericSample(80, 97)
	payload.DeviceID = "hw-0001"
	payload.Ts = float64(1736942400) // epoch seconds on this path
	reading, err := svc.IngestByIntegrationKey(ctx, testIntegrationKey, payload)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), reading.Ts)
	assert.Len(t, store.readings, 1)
}

func TestIngestByIntegrationKey_WrongKey(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	_, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "hw-0001")
	require.NoError(t, err)

	payload := numericSample(80, 97)
	payload.DeviceID = "hw-0001"
	_, err = svc.IngestByIntegrationKey(ctx, "wrong-key", payload)

	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	assert.Empty(t, store.readings, "no reading may be created on a bad key")
}

func TestIngestByIntegrationKey_DisabledWhenUnconfigured(t *testing.T) {
	store := newFakeStore()
	svc := New(
		&fakeCustomerRepo{store: store},
		&fakeDeviceRepo{store: store},
		&fakeReadingRepo{store: store},
		nil,
		"", // no key configured
	)

	payload := numericSample(80, 97)
	payload.DeviceID = "hw-0001"
	_, err := svc.IngestByIntegrationKey(context.Background(), "", payload)

	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestIngestByIntegrationKey_UnregisteredDevice(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")

	payload := numericSample(80, 97)
	payload.DeviceID = "hw-unknown"
	_, err := svc.IngestByIntegrationKey(context.Background(), testIntegrationKey, payload)

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, store.readings)
}

func TestIngest_DuplicateSamplesCreateDuplicateRows(t *testing.T) {
	svc, store := newTestService()
	store.addCustomer("cus_alice", "alice@example.com")
	ctx := context.Background()

	device, err := svc.RegisterDevice(ctx, "cus_alice", "watch-1", "")
	require.NoError(t, err)

	payload := numericSample(72, 98)
	payload.Ts = float64(1736942400000)

	// Idempotency is explicitly not guaranteed: a retry appends again.
	_, err = svc.IngestBySecret(ctx, device.Secret, payload)
	require.NoError(t, err)
	_, err = svc.IngestBySecret(ctx, device.Secret, payload)
	require.NoError(t, err)

	assert.Len(t, store.readings, 2)
}

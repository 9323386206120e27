// FilePath: internal/hubservice/hubservice_test.go
package hubservice

import (
	"context"
	"sort"
	"time"

	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// fakeStore is an in-memory stand-in for the app and time-series stores,
// shared by the repository fakes below.
type fakeStore struct {
	customers map[string]*models.Customer
	devices   map[string]*models.Device
	readings  []models.Reading

	lastRangeFrom time.Time
	lastRangeTo   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[string]*models.Customer),
		devices:   make(map[string]*models.Device),
	}
}

func (f *fakeStore) addCustomer(id, email string) *models.Customer {
	customer := &models.Customer{ID: id, Email: email, CreatedAt: time.Now().UTC()}
	f.customers[id] = customer
	return customer
}

type fakeCustomerRepo struct{ store *fakeStore }

func (r *fakeCustomerRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	for _, existing := range r.store.customers {
		if existing.Email == customer.Email {
			return repository.ErrDuplicate
		}
	}
	r.store.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Get(ctx context.Context, id string) (*models.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return customer, nil
}

func (r *fakeCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, customer := range r.store.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCustomerRepo) UpdateLastAccess(ctx context.Context, id string, lastAccess time.Time) error {
	customer, ok := r.store.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	customer.LastAccess = lastAccess
	return nil
}

type fakeDeviceRepo struct{ store *fakeStore }

func (r *fakeDeviceRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (r *fakeDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	for _, existing := range r.store.devices {
		if existing.Secret == device.Secret {
			return repository.ErrDuplicate
		}
		if device.ExternalID != "" && existing.ExternalID == device.ExternalID {
			return repository.ErrDuplicate
		}
	}
	copied := *device
	r.store.devices[device.ID] = &copied
	return nil
}

func (r *fakeDeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	device, ok := r.store.devices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Device, error) {
	devices := []*models.Device{}
	for _, device := range r.store.devices {
		if device.OwnerID == ownerID {
			copied := *device
			devices = append(devices, &copied)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

func (r *fakeDeviceRepo) DeleteOwned(ctx context.Context, ownerID, deviceID string) (int64, error) {
	device, ok := r.store.devices[deviceID]
	if !ok || device.OwnerID != ownerID {
		return 0, nil
	}
	delete(r.store.devices, deviceID)
	return 1, nil
}

func (r *fakeDeviceRepo) GetBySecret(ctx context.Context, secret string) (*models.Device, error) {
	for _, device := range r.store.devices {
		if device.Secret == secret {
			copied := *device
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDeviceRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Device, error) {
	for _, device := range r.store.devices {
		if device.ExternalID != "" && device.ExternalID == externalID {
			copied := *device
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeReadingRepo struct{ store *fakeStore }

func (r *fakeReadingRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (r *fakeReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	r.store.readings = append(r.store.readings, *reading)
	return nil
}

func (r *fakeReadingRepo) ListRange(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.Reading, error) {
	r.store.lastRangeFrom = from
	r.store.lastRangeTo = to

	wanted := make(map[string]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		wanted[id] = true
	}

	readings := []models.Reading{}
	for _, reading := range r.store.readings {
		if !wanted[reading.DeviceID] {
			continue
		}
		if reading.Ts.Before(from) || !reading.Ts.Before(to) {
			continue
		}
		readings = append(readings, reading)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Ts.Before(readings[j].Ts) })
	return readings, nil
}

func (r *fakeReadingRepo) DailyAggregate(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.DailySummary, error) {
	r.store.lastRangeFrom = from
	r.store.lastRangeTo = to

	readings, err := r.ListRange(ctx, deviceIDs, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum      float64
		min, max float64
		count    int
	}
	buckets := make(map[string]*bucket)
	for _, reading := range readings {
		date := reading.Ts.UTC().Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			b = &bucket{min: reading.HR, max: reading.HR}
			buckets[date] = b
		}
		b.sum += reading.HR
		b.count++
		if reading.HR < b.min {
			b.min = reading.HR
		}
		if reading.HR > b.max {
			b.max = reading.HR
		}
	}

	summaries := []models.DailySummary{}
	for date, b := range buckets {
		summaries = append(summaries, models.DailySummary{
			Date: date,
			Avg:  b.sum / float64(b.count),
			Min:  b.min,
			Max:  b.max,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date < summaries[j].Date })
	return summaries, nil
}

func (r *fakeReadingRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	kept := r.store.readings[:0]
	for _, reading := range r.store.readings {
		if reading.DeviceID != deviceID {
			kept = append(kept, reading)
		}
	}
	r.store.readings = kept
	return nil
}

const testIntegrationKey = "integration-key-for-tests"

func newTestService() (*HubService, *fakeStore) {
	store := newFakeStore()
	svc := New(
		&fakeCustomerRepo{store: store},
		&fakeDeviceRepo{store: store},
		&fakeReadingRepo{store: store},
		nil,
		testIntegrationKey,
	)
	return svc, store
}

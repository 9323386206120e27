// FilePath: internal/hubservice/hubservice.query.go
package hubservice

import (
	"context"
	stderrors "errors"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

// dayFormat is the calendar-date shape accepted by day queries.
// All windows are UTC calendar days.
const dayFormat = "2006-01-02"

// ResolveOwner maps a verified identity's email to its customer record.
// Resolution happens once per request; the resolved owner is passed down
// instead of re-queried per sub-operation.
func (s *HubService) ResolveOwner(ctx context.Context, email string) (*models.Customer, error) {
	if email == "" {
		return nil, errors.NewNotFoundError("owner not found", nil)
	}

	customer, err := s.Customers.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("owner not found", err)
		}
		return nil, err
	}

	// Touch the access timestamp; a failure here is not worth failing
	// the caller's query over.
	if err := s.Customers.UpdateLastAccess(ctx, customer.ID, time.Now().UTC()); err != nil {
		nuts.L.Warnf("[QueryService] Failed to update last access for %s: %v", customer.ID, err)
	}
	return customer, nil
}

// DayView returns the caller's readings for the 24-hour UTC window of the
// given calendar date, ascending by timestamp.
func (s *HubService) DayView(ctx context.Context, email, day string) ([]models.Reading, error) {
	start, err := time.ParseInLocation(dayFormat, day, time.UTC)
	if err != nil {
		return nil, errors.NewValidationError("invalid day", err)
	}
	end := start.AddDate(0, 0, 1)

	owner, err := s.ResolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}

	deviceIDs, err := s.ownedDeviceIDs(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if len(deviceIDs) == 0 {
		return []models.Reading{}, nil
	}

	return s.Readings.ListRange(ctx, deviceIDs, start, end)
}

// WeeklySummary returns per-day heart-rate aggregates for the trailing
// seven days inclusive of today: window start is six days back at 00:00
// UTC, window end is now. Days with no readings are absent.
func (s *HubService) WeeklySummary(ctx context.Context, email string) ([]models.DailySummary, error) {
	owner, err := s.ResolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}

	deviceIDs, err := s.ownedDeviceIDs(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if len(deviceIDs) == 0 {
		return []models.DailySummary{}, nil
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -6)

	return s.Readings.DailyAggregate(ctx, deviceIDs, start, now)
}

// ownedDeviceIDs computes the caller's device set, the only scope any
// read is ever allowed to see.
func (s *HubService) ownedDeviceIDs(ctx context.Context, ownerID string) ([]string, error) {
	devices, err := s.Devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(devices))
	for _, device := range devices {
		ids = append(ids, device.ID)
	}
	return ids, nil
}

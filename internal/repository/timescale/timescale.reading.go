// FilePath: internal/repository/timescale/timescale.reading.go
package timescale

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"

	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
)

type ReadingRepo struct {
	TimeScaleBaseRepo
}

// NewReadingRepository bootstraps the readings hypertable. retentionDays
// of 0 keeps readings indefinitely.
func NewReadingRepository(db database.DB, retentionDays int) (*ReadingRepo, error) {
	repo := &ReadingRepo{TimeScaleBaseRepo: TimeScaleBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	if err := repo.applyRetention(retentionDays); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	// Readings live in a hypertable chunked per day. Aggregation buckets
	// use UTC calendar days.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			hr DOUBLE PRECISION NOT NULL,
			spo2 DOUBLE PRECISION NOT NULL
		)`,
		`SELECT create_hypertable('readings', 'ts',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_device_ts
			ON readings(device_id, ts DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize readings schema", err)
		}
	}
	return nil
}

func (r *ReadingRepo) applyRetention(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	query := fmt.Sprintf(
		`SELECT add_retention_policy('readings', INTERVAL '%d days', if_not_exists => TRUE)`,
		retentionDays)
	if _, err := r.db.GetDB().Exec(query); err != nil {
		return errors.NewDatabaseError("failed to apply retention policy", err)
	}
	nuts.L.Infof("[TimescaleDB] Retention policy set to %d days", retentionDays)
	return nil
}

func (r *ReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (id, device_id, ts, hr, spo2)
		VALUES (:id, :device_id, :ts, :hr, :spo2)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *ReadingRepo) ListRange(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}
	if len(deviceIDs) == 0 {
		return readings, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, device_id, ts, hr, spo2
		FROM readings
		WHERE device_id IN (?) AND ts >= ? AND ts < ?
		ORDER BY ts ASC`, deviceIDs, from, to)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to build range query", err)
	}

	query = r.db.GetDB().Rebind(query)
	if err := r.db.GetDB().SelectContext(ctx, &readings, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) DailyAggregate(ctx context.Context, deviceIDs []string, from, to time.Time) ([]models.DailySummary, error) {
	summaries := []models.DailySummary{}
	if len(deviceIDs) == 0 {
		return summaries, nil
	}

	// One row per UTC day with at least one reading; min/avg/max over hr
	// only. Empty days are simply absent, no zero-filling.
	query, args, err := sqlx.In(`
		SELECT
			to_char(time_bucket('1 day', ts, 'UTC'), 'YYYY-MM-DD') AS date,
			AVG(hr) AS avg,
			MIN(hr) AS min,
			MAX(hr) AS max
		FROM readings
		WHERE device_id IN (?) AND ts >= ? AND ts < ?
		GROUP BY 1
		ORDER BY 1 ASC`, deviceIDs, from, to)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to build aggregate query", err)
	}

	query = r.db.GetDB().Rebind(query)
	if err := r.db.GetDB().SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to aggregate readings", err)
	}
	return summaries, nil
}

func (r *ReadingRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	query := `DELETE FROM readings WHERE device_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, deviceID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[TimescaleDB] Deleted %d readings for device %s", rows, deviceID)
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// HistoryLimit is the fixed cap on reading queries. Callers asking for more
// are clamped; callers asking for nothing get the full cap.
const HistoryLimit = 50

// AppendReading stores one upload tuple. The timestamp is assigned by the
// database so that ordering follows insertion under clock skew.
func (s *Storage) AppendReading(ctx context.Context, reading types.Reading) (types.Reading, error) {
	args := pgx.NamedArgs{
		"device_id":   reading.DeviceID,
		"moisture":    reading.Moisture,
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
		"sunlight":    reading.Sunlight,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO sensor_readings (device_id, moisture, temperature, humidity, sunlight)
		VALUES (@device_id, @moisture, @temperature, @humidity, @sunlight)
		RETURNING id, device_id, moisture, temperature, humidity, sunlight, time
	`, args)

	return scanReading(row)
}

func (s *Storage) GetLatestReading(ctx context.Context, deviceID string) (types.Reading, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, device_id, moisture, temperature, humidity, sunlight, time
		FROM sensor_readings
		WHERE device_id = @device_id
		ORDER BY time DESC, id DESC
		LIMIT 1
	`, pgx.NamedArgs{"device_id": deviceID})

	return scanReading(row)
}

// QueryReadings returns readings most-recent-first, capped at HistoryLimit.
// WithBefore gives cursor-style pagination without changing the default cap.
func (s *Storage) QueryReadings(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Reading], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	limit := condition.Limit()
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}

	args := condition.NamedArgs()

	query := fmt.Sprintf(`
		SELECT id, device_id, moisture, temperature, humidity, sunlight, time, count(*) OVER () AS count
		FROM sensor_readings
		%s
		ORDER BY time DESC, id DESC
		LIMIT %d
	`, condition.Where(), limit)

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.Reading]{}, err
	}

	var r types.Reading
	var count int64

	readings := make([]types.Reading, 0)

	_, err = pgx.ForEachRow(rows, []any{&r.ID, &r.DeviceID, &r.Moisture, &r.Temperature, &r.Humidity, &r.Sunlight, &r.CreatedAt, &count}, func() error {
		readings = append(readings, r)
		return nil
	})
	if err != nil {
		return types.Collection[types.Reading]{}, err
	}

	return types.Collection[types.Reading]{
		Data:       readings,
		Count:      uint64(len(readings)),
		Limit:      uint64(limit),
		TotalCount: uint64(count),
	}, nil
}

func scanReading(row pgx.Row) (types.Reading, error) {
	var r types.Reading

	err := row.Scan(&r.ID, &r.DeviceID, &r.Moisture, &r.Temperature, &r.Humidity, &r.Sunlight, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Reading{}, ErrNoRows
		}
		return types.Reading{}, err
	}

	return r, nil
}

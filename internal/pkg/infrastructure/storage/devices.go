package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// UpsertDevice implements the auto-discovery path for uploads: insert the
// device if the id has never been seen, otherwise flip it ONLINE. The unique
// constraint on device_id makes this safe under concurrent first uploads.
func (s *Storage) UpsertDevice(ctx context.Context, device types.Device) (types.Device, error) {
	args := pgx.NamedArgs{
		"device_id": device.DeviceID,
		"name":      device.Name,
		"zone":      device.Zone,
		"location":  nullable(device.Location),
		"status":    types.StatusOnline,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO devices (device_id, name, zone, location, status)
		VALUES (@device_id, @name, @zone, @location, @status)
		ON CONFLICT (device_id) DO UPDATE
		SET status = EXCLUDED.status, modified_on = CURRENT_TIMESTAMP
		RETURNING device_id, name, zone, COALESCE(location, ''), status, created_on
	`, args)

	return scanDevice(row)
}

// AddDevice is the explicit registration path. Unlike UpsertDevice it fails
// when the id already exists and has no ONLINE side effect.
func (s *Storage) AddDevice(ctx context.Context, device types.Device) (types.Device, error) {
	args := pgx.NamedArgs{
		"device_id": device.DeviceID,
		"name":      device.Name,
		"zone":      device.Zone,
		"location":  nullable(device.Location),
		"status":    types.StatusOffline,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO devices (device_id, name, zone, location, status)
		VALUES (@device_id, @name, @zone, @location, @status)
		ON CONFLICT (device_id) DO NOTHING
		RETURNING device_id, name, zone, COALESCE(location, ''), status, created_on
	`, args)

	d, err := scanDevice(row)
	if errors.Is(err, ErrNoRows) {
		return types.Device{}, ErrAlreadyExist
	}

	return d, err
}

func (s *Storage) GetDevice(ctx context.Context, deviceID string) (types.Device, error) {
	row := s.db.QueryRow(ctx, `
		SELECT device_id, name, zone, COALESCE(location, ''), status, created_on
		FROM devices
		WHERE device_id = @device_id
	`, pgx.NamedArgs{"device_id": deviceID})

	return scanDevice(row)
}

func (s *Storage) QueryDevices(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Device], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	args := condition.NamedArgs()

	query := fmt.Sprintf(`
		SELECT device_id, name, zone, COALESCE(location, ''), status, created_on, count(*) OVER () AS count
		FROM devices
		%s
		ORDER BY %s %s
		%s
	`, condition.Where(), condition.SortBy("created_on"), condition.SortOrder(), condition.OffsetLimit())

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.Device]{}, err
	}

	var d types.Device
	var count int64

	devices := make([]types.Device, 0)

	_, err = pgx.ForEachRow(rows, []any{&d.DeviceID, &d.Name, &d.Zone, &d.Location, &d.Status, &d.CreatedAt, &count}, func() error {
		devices = append(devices, d)
		return nil
	})
	if err != nil {
		return types.Collection[types.Device]{}, err
	}

	return types.Collection[types.Device]{
		Data:       devices,
		Count:      uint64(len(devices)),
		Limit:      uint64(condition.Limit()),
		Offset:     uint64(condition.Offset()),
		TotalCount: uint64(count),
	}, nil
}

func (s *Storage) DeleteDevice(ctx context.Context, deviceID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM devices
		WHERE device_id = @device_id
	`, pgx.NamedArgs{"device_id": deviceID})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	return nil
}

func scanDevice(row pgx.Row) (types.Device, error) {
	var d types.Device

	err := row.Scan(&d.DeviceID, &d.Name, &d.Zone, &d.Location, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Device{}, ErrNoRows
		}
		return types.Device{}, err
	}

	return d, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

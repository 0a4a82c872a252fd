package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// AppendCommand adds one row to the irrigation audit trail. Entries are never
// updated or deleted.
func (s *Storage) AppendCommand(ctx context.Context, entry types.CommandLogEntry) (types.CommandLogEntry, error) {
	args := pgx.NamedArgs{
		"command_id": entry.CommandID,
		"device_id":  entry.DeviceID,
		"command":    string(entry.Command),
		"source":     string(entry.Source),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO command_log (command_id, device_id, command, source)
		VALUES (@command_id, @device_id, @command, @source)
		RETURNING command_id, device_id, command, source, created_on
	`, args)

	return scanCommand(row)
}

// GetLatestCommand derives "current pump state" as the most recent log entry
// for the device.
func (s *Storage) GetLatestCommand(ctx context.Context, deviceID string) (types.CommandLogEntry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT command_id, device_id, command, source, created_on
		FROM command_log
		WHERE device_id = @device_id
		ORDER BY created_on DESC
		LIMIT 1
	`, pgx.NamedArgs{"device_id": deviceID})

	return scanCommand(row)
}

func (s *Storage) QueryCommands(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.CommandLogEntry], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	args := condition.NamedArgs()

	query := `
		SELECT command_id, device_id, command, source, created_on
		FROM command_log
		` + condition.Where() + `
		ORDER BY created_on DESC
		` + condition.OffsetLimit()

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.CommandLogEntry]{}, err
	}

	var e types.CommandLogEntry
	var command, source string

	entries := make([]types.CommandLogEntry, 0)

	_, err = pgx.ForEachRow(rows, []any{&e.CommandID, &e.DeviceID, &command, &source, &e.CreatedAt}, func() error {
		e.Command = types.Command(command)
		e.Source = types.Source(source)
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return types.Collection[types.CommandLogEntry]{}, err
	}

	return types.Collection[types.CommandLogEntry]{
		Data:       entries,
		Count:      uint64(len(entries)),
		Limit:      uint64(condition.Limit()),
		Offset:     uint64(condition.Offset()),
		TotalCount: uint64(len(entries)),
	}, nil
}

func scanCommand(row pgx.Row) (types.CommandLogEntry, error) {
	var e types.CommandLogEntry
	var command, source string

	err := row.Scan(&e.CommandID, &e.DeviceID, &command, &source, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.CommandLogEntry{}, ErrNoRows
		}
		return types.CommandLogEntry{}, err
	}

	e.Command = types.Command(command)
	e.Source = types.Source(source)

	return e, nil
}

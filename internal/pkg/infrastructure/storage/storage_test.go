package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func testSetup(t *testing.T) (context.Context, *Storage) {
	ctx := context.Background()

	config := Config{
		host:     "localhost",
		user:     "postgres",
		password: "password",
		port:     "5432",
		dbname:   "postgres",
		sslmode:  "disable",
	}

	s, err := New(ctx, config)
	if err != nil {
		t.SkipNow()
	}

	err = s.Initialize(ctx)
	if err != nil {
		t.SkipNow()
	}

	return ctx, s
}

func newDeviceID() string {
	return fmt.Sprintf("test-%s", uuid.NewString()[:8])
}

func TestUpsertDeviceDiscoversAndFlipsOnline(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	d, err := s.UpsertDevice(ctx, types.Device{
		DeviceID: deviceID,
		Name:     "Device " + deviceID,
		Zone:     "Unassigned",
	})
	is.NoErr(err)
	is.Equal(types.StatusOnline, d.Status)

	// a second upsert must not clobber name or zone
	d, err = s.UpsertDevice(ctx, types.Device{
		DeviceID: deviceID,
		Name:     "some other name",
		Zone:     "some other zone",
	})
	is.NoErr(err)
	is.Equal("Device "+deviceID, d.Name)
	is.Equal("Unassigned", d.Zone)
}

func TestAddDeviceRejectsDuplicates(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	_, err := s.AddDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
	is.NoErr(err)

	_, err = s.AddDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
	is.Equal(ErrAlreadyExist, err)
}

func TestQueryReadingsHonorsTheHistoryCap(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	_, err := s.UpsertDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
	is.NoErr(err)

	for i := 0; i < HistoryLimit+5; i++ {
		_, err = s.AppendReading(ctx, types.Reading{DeviceID: deviceID, Moisture: float64(i)})
		is.NoErr(err)
	}

	collection, err := s.QueryReadings(ctx, WithDeviceID(deviceID), WithLimit(1000))
	is.NoErr(err)
	is.Equal(HistoryLimit, len(collection.Data))

	// newest first
	is.True(collection.Data[0].CreatedAt.After(collection.Data[len(collection.Data)-1].CreatedAt) ||
		collection.Data[0].ID > collection.Data[len(collection.Data)-1].ID)

	collection, err = s.QueryReadings(ctx, WithDeviceID(deviceID), WithLimit(5))
	is.NoErr(err)
	is.Equal(5, len(collection.Data))
}

func TestGetLatestReading(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	_, err := s.UpsertDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
	is.NoErr(err)

	_, err = s.GetLatestReading(ctx, deviceID)
	is.Equal(ErrNoRows, err)

	_, err = s.AppendReading(ctx, types.Reading{DeviceID: deviceID, Moisture: 33.0})
	is.NoErr(err)

	last, err := s.AppendReading(ctx, types.Reading{DeviceID: deviceID, Moisture: 44.0})
	is.NoErr(err)

	r, err := s.GetLatestReading(ctx, deviceID)
	is.NoErr(err)
	is.Equal(last.ID, r.ID)
	is.Equal(44.0, r.Moisture)
}

func TestCommandLogIsAppendOnly(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	_, err := s.UpsertDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
	is.NoErr(err)

	_, err = s.GetLatestCommand(ctx, deviceID)
	is.Equal(ErrNoRows, err)

	_, err = s.AppendCommand(ctx, types.CommandLogEntry{
		CommandID: uuid.NewString(), DeviceID: deviceID, Command: types.CommandOn, Source: types.SourceAuto,
	})
	is.NoErr(err)

	time.Sleep(10 * time.Millisecond)

	_, err = s.AppendCommand(ctx, types.CommandLogEntry{
		CommandID: uuid.NewString(), DeviceID: deviceID, Command: types.CommandOff, Source: types.SourceManual,
	})
	is.NoErr(err)

	entry, err := s.GetLatestCommand(ctx, deviceID)
	is.NoErr(err)
	is.Equal(types.CommandOff, entry.Command)
	is.Equal(types.SourceManual, entry.Source)

	collection, err := s.QueryCommands(ctx, WithDeviceID(deviceID))
	is.NoErr(err)
	is.Equal(2, len(collection.Data))
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx, s := testSetup(t)
	is := is.New(t)

	deviceID := newDeviceID()

	err := s.InTx(ctx, func(tx *Storage) error {
		_, err := tx.UpsertDevice(ctx, types.Device{DeviceID: deviceID, Name: "n", Zone: "z"})
		if err != nil {
			return err
		}

		return fmt.Errorf("boom")
	})
	is.True(err != nil)

	_, err = s.GetDevice(ctx, deviceID)
	is.Equal(ErrNoRows, err)
}

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/irrigation"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func ptr[T any](v T) *T {
	return &v
}

func newMocks() (*TelemetryStorageMock, *fanout.FanoutMock, *messaging.MsgContextMock) {
	s := &TelemetryStorageMock{
		IngestReadingFunc: func(ctx context.Context, device types.Device, reading types.Reading, entry *types.CommandLogEntry) (types.Reading, error) {
			reading.ID = 1
			reading.CreatedAt = time.Now().UTC()
			return reading, nil
		},
	}
	fan := &fanout.FanoutMock{
		PublishFunc: func(ctx context.Context, deviceID string, command types.Command) error {
			return nil
		},
	}
	m := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			return nil
		},
	}

	return s, fan, m
}

func TestIngestDryReadingTurnsPumpOn(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	result, err := svc.Ingest(context.Background(), Upload{
		DeviceID: "KS-001",
		Moisture: ptr(25.0),
	})
	is.NoErr(err)
	is.Equal(types.CommandOn, result.Command)

	call := s.IngestReadingCalls()[0]
	is.Equal("KS-001", call.Device.DeviceID)
	is.Equal("Device KS-001", call.Device.Name)
	is.Equal("Unassigned", call.Device.Zone)
	is.True(call.Entry != nil)
	is.Equal(types.CommandOn, call.Entry.Command)
	is.Equal(types.SourceAuto, call.Entry.Source)

	is.Equal(1, len(fan.PublishCalls()))
	is.Equal("KS-001", fan.PublishCalls()[0].DeviceID)
	is.Equal(1, len(m.PublishOnTopicCalls()))
}

func TestIngestWetReadingTurnsPumpOff(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	result, err := svc.Ingest(context.Background(), Upload{
		DeviceID: "KS-001",
		Moisture: ptr(80.0),
	})
	is.NoErr(err)
	is.Equal(types.CommandOff, result.Command)

	is.Equal(types.CommandOff, s.IngestReadingCalls()[0].Entry.Command)
	is.Equal(1, len(fan.PublishCalls()))
}

func TestIngestComfortableReadingIssuesNoCommand(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	result, err := svc.Ingest(context.Background(), Upload{
		DeviceID: "KS-001",
		Moisture: ptr(50.0),
	})
	is.NoErr(err)
	is.Equal(types.CommandNone, result.Command)

	// no command log entry and nothing pushed
	is.True(s.IngestReadingCalls()[0].Entry == nil)
	is.Equal(0, len(fan.PublishCalls()))
	is.Equal(0, len(m.PublishOnTopicCalls()))
}

func TestIngestRejectsIncompleteUploads(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	_, err := svc.Ingest(context.Background(), Upload{Moisture: ptr(25.0)})
	is.True(err == ErrInvalidUpload)

	_, err = svc.Ingest(context.Background(), Upload{DeviceID: "KS-001"})
	is.True(err == ErrInvalidUpload)

	is.Equal(0, len(s.IngestReadingCalls()))
}

func TestIngestDefaultsOptionalMeasurements(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	_, err := svc.Ingest(context.Background(), Upload{
		DeviceID: "KS-001",
		Moisture: ptr(50.0),
	})
	is.NoErr(err)

	reading := s.IngestReadingCalls()[0].Reading
	is.Equal(0, reading.Sunlight)
	is.True(reading.Temperature == nil)
	is.True(reading.Humidity == nil)
}

func TestIngestKeepsProvidedZone(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	_, err := svc.Ingest(context.Background(), Upload{
		DeviceID: "KS-002",
		Moisture: ptr(50.0),
		Zone:     "North Field",
		Sunlight: ptr(512),
	})
	is.NoErr(err)

	call := s.IngestReadingCalls()[0]
	is.Equal("North Field", call.Device.Zone)
	is.Equal(512, call.Reading.Sunlight)
}

func TestLatestReturnsEmptyForUnknownDevice(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	s.GetLatestReadingFunc = func(ctx context.Context, deviceID string) (types.Reading, error) {
		return types.Reading{}, storage.ErrNoRows
	}

	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	_, found, err := svc.Latest(context.Background(), "unknown")
	is.NoErr(err)
	is.Equal(false, found)
}

func TestHistoryAppliesConditions(t *testing.T) {
	is := is.New(t)

	s, fan, m := newMocks()
	s.QueryReadingsFunc = func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error) {
		c := &storage.Condition{}
		for _, condition := range conditions {
			condition(c)
		}

		is.Equal("KS-001", c.DeviceID)
		is.Equal(10, c.Limit())

		return types.Collection[types.Reading]{Data: []types.Reading{{DeviceID: "KS-001"}}, Count: 1}, nil
	}

	svc := New(s, m, fan, nil, irrigation.DefaultConfig())

	readings, err := svc.History(context.Background(), "KS-001", 10, time.Time{})
	is.NoErr(err)
	is.Equal(1, len(readings))
}

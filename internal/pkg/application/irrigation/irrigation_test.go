package irrigation

import (
	"context"
	"testing"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestManualControlAppendsEntryAndPublishes(t *testing.T) {
	is := is.New(t)

	var logged types.CommandLogEntry

	s := &CommandStorageMock{
		AppendCommandFunc: func(ctx context.Context, entry types.CommandLogEntry) (types.CommandLogEntry, error) {
			logged = entry
			return entry, nil
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

	svc := New(s, m, fan, nil)

	entry, err := svc.ManualControl(context.Background(), "KS-001", types.CommandOff)
	is.NoErr(err)

	is.Equal(types.CommandOff, entry.Command)
	is.Equal(types.SourceManual, logged.Source)
	is.True(logged.CommandID != "")

	is.Equal(1, len(fan.PublishCalls()))
	is.Equal("KS-001", fan.PublishCalls()[0].DeviceID)

	is.Equal(1, len(m.PublishOnTopicCalls()))
	is.Equal("irrigation.commandIssued", m.PublishOnTopicCalls()[0].Message.TopicName())
}

func TestManualControlRejectsInvalidCommand(t *testing.T) {
	is := is.New(t)

	s := &CommandStorageMock{}
	svc := New(s, &messaging.MsgContextMock{}, &fanout.FanoutMock{}, nil)

	_, err := svc.ManualControl(context.Background(), "KS-001", types.Command("MAYBE"))
	is.True(err == ErrInvalidCommand)

	_, err = svc.ManualControl(context.Background(), "KS-001", types.CommandNone)
	is.True(err == ErrInvalidCommand)

	_, err = svc.ManualControl(context.Background(), "", types.CommandOn)
	is.True(err == ErrInvalidCommand)

	is.Equal(0, len(s.AppendCommandCalls()))
}

func TestManualControlIgnoresMoistureLevels(t *testing.T) {
	is := is.New(t)

	// a manual OFF is logged even when the latest reading would have the
	// automation turn the pump on
	s := &CommandStorageMock{
		AppendCommandFunc: func(ctx context.Context, entry types.CommandLogEntry) (types.CommandLogEntry, error) {
			return entry, nil
		},
	}
	fan := &fanout.FanoutMock{
		PublishFunc: func(ctx context.Context, deviceID string, command types.Command) error {
			return nil
		},
	}

	svc := New(s, &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error { return nil },
	}, fan, nil)

	entry, err := svc.ManualControl(context.Background(), "KS-002", types.CommandOff)
	is.NoErr(err)
	is.Equal(types.CommandOff, entry.Command)
	is.Equal(1, len(s.AppendCommandCalls()))
}

func TestCurrentCommandDerivesFromLatestEntry(t *testing.T) {
	is := is.New(t)

	s := &CommandStorageMock{
		GetLatestCommandFunc: func(ctx context.Context, deviceID string) (types.CommandLogEntry, error) {
			return types.CommandLogEntry{DeviceID: deviceID, Command: types.CommandOn}, nil
		},
	}

	svc := New(s, &messaging.MsgContextMock{}, &fanout.FanoutMock{}, nil)

	command, err := svc.CurrentCommand(context.Background(), "KS-001")
	is.NoErr(err)
	is.Equal(types.CommandOn, command)
}

func TestCurrentCommandWithoutHistory(t *testing.T) {
	is := is.New(t)

	s := &CommandStorageMock{
		GetLatestCommandFunc: func(ctx context.Context, deviceID string) (types.CommandLogEntry, error) {
			return types.CommandLogEntry{}, storage.ErrNoRows
		},
	}

	svc := New(s, &messaging.MsgContextMock{}, &fanout.FanoutMock{}, nil)

	command, err := svc.CurrentCommand(context.Background(), "unknown")
	is.NoErr(err)
	is.Equal(types.Command(""), command)
}

package irrigation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/events"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

var ErrInvalidCommand = fmt.Errorf("command must be ON or OFF")

// IrrigationService owns the command log: it records manually issued commands
// and derives current pump state from the latest entry. Manual control never
// consults the decision engine.
//
//go:generate moq -rm -out irrigation_mock.go . IrrigationService
type IrrigationService interface {
	ManualControl(ctx context.Context, deviceID string, command types.Command) (types.CommandLogEntry, error)
	CurrentCommand(ctx context.Context, deviceID string) (types.Command, error)
}

//go:generate moq -rm -out commandstorage_mock.go . CommandStorage
type CommandStorage interface {
	AppendCommand(ctx context.Context, entry types.CommandLogEntry) (types.CommandLogEntry, error)
	GetLatestCommand(ctx context.Context, deviceID string) (types.CommandLogEntry, error)
}

func NewStorage(s *storage.Storage) CommandStorage {
	return s
}

type service struct {
	storage   CommandStorage
	messenger messaging.MsgContext
	fanout    fanout.Fanout
	notifier  events.EventSender
}

func New(storage CommandStorage, messenger messaging.MsgContext, fan fanout.Fanout, notifier events.EventSender) IrrigationService {
	return &service{
		storage:   storage,
		messenger: messenger,
		fanout:    fan,
		notifier:  notifier,
	}
}

func (s *service) ManualControl(ctx context.Context, deviceID string, command types.Command) (types.CommandLogEntry, error) {
	if deviceID == "" || !command.Valid() {
		return types.CommandLogEntry{}, ErrInvalidCommand
	}

	entry, err := s.storage.AppendCommand(ctx, types.CommandLogEntry{
		CommandID: uuid.NewString(),
		DeviceID:  deviceID,
		Command:   command,
		Source:    types.SourceManual,
	})
	if err != nil {
		return types.CommandLogEntry{}, err
	}

	Announce(ctx, s.fanout, s.messenger, s.notifier, entry)

	return entry, nil
}

func (s *service) CurrentCommand(ctx context.Context, deviceID string) (types.Command, error) {
	entry, err := s.storage.GetLatestCommand(ctx, deviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return entry.Command, nil
}

// Announce pushes a freshly logged command over every outbound channel. All
// three paths are fire-and-forget: a device that is not subscribed, a broker
// that is down or a failing webhook must never fail the request that logged
// the command.
func Announce(ctx context.Context, fan fanout.Fanout, messenger messaging.MsgContext, notifier events.EventSender, entry types.CommandLogEntry) {
	log := logging.GetFromContext(ctx)

	if fan != nil {
		if err := fan.Publish(ctx, entry.DeviceID, entry.Command); err != nil {
			log.Error("could not push command to device channel", "device_id", entry.DeviceID, "err", err.Error())
		}
	}

	if messenger != nil {
		evt := &CommandIssued{
			CommandID: entry.CommandID,
			DeviceID:  entry.DeviceID,
			Command:   entry.Command,
			Source:    entry.Source,
			Timestamp: entry.CreatedAt,
		}
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now().UTC()
		}
		if err := messenger.PublishOnTopic(ctx, evt); err != nil {
			log.Error("could not publish commandIssued event", "device_id", entry.DeviceID, "err", err.Error())
		}
	}

	if notifier != nil {
		if err := notifier.Send(ctx, entry); err != nil {
			log.Error("could not notify subscribers", "device_id", entry.DeviceID, "err", err.Error())
		}
	}
}

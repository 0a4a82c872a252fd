package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/google/uuid"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/events"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/irrigation"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/pkg/types"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("farm-telemetry/telemetry")

var ErrInvalidUpload = fmt.Errorf("upload is missing device_id or moisture")

// Upload is a single telemetry submission from a device. Moisture is the only
// required measurement; sunlight defaults to 0 when omitted, which collides
// with 0 being a valid analog value (the original behaved the same, so the
// default is kept for compatibility).
type Upload struct {
	DeviceID    string   `json:"device_id"`
	Moisture    *float64 `json:"moisture"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Sunlight    *int     `json:"sunlight"`
	Zone        string   `json:"zone"`
}

type IngestResult struct {
	Reading types.Reading
	Command types.Command
}

// TelemetryService is the ingestion pipeline plus the read paths dashboards
// use. One Ingest call is one unit of work: reconcile the device, append the
// reading, evaluate the irrigation rule and log any resulting command.
//
//go:generate moq -rm -out telemetry_mock.go . TelemetryService
type TelemetryService interface {
	Ingest(ctx context.Context, upload Upload) (IngestResult, error)
	Latest(ctx context.Context, deviceID string) (types.Reading, bool, error)
	History(ctx context.Context, deviceID string, limit int, before time.Time) ([]types.Reading, error)

	RegisterTopicMessageHandler(ctx context.Context) error
}

//go:generate moq -rm -out telemetrystorage_mock.go . TelemetryStorage
type TelemetryStorage interface {
	IngestReading(ctx context.Context, device types.Device, reading types.Reading, entry *types.CommandLogEntry) (types.Reading, error)
	GetLatestReading(ctx context.Context, deviceID string) (types.Reading, error)
	QueryReadings(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error)
}

type telemetryStorageImpl struct {
	s *storage.Storage
}

// NewStorage binds the pipeline's writes into a single transaction per
// upload. The reference implementation ran the steps without one; wrapping
// them strengthens the contract without changing what callers observe.
func NewStorage(s *storage.Storage) TelemetryStorage {
	return &telemetryStorageImpl{s: s}
}

func (t *telemetryStorageImpl) IngestReading(ctx context.Context, device types.Device, reading types.Reading, entry *types.CommandLogEntry) (types.Reading, error) {
	var stored types.Reading

	err := t.s.InTx(ctx, func(tx *storage.Storage) error {
		_, err := tx.UpsertDevice(ctx, device)
		if err != nil {
			return err
		}

		stored, err = tx.AppendReading(ctx, reading)
		if err != nil {
			return err
		}

		if entry != nil {
			_, err = tx.AppendCommand(ctx, *entry)
		}

		return err
	})
	if err != nil {
		return types.Reading{}, err
	}

	return stored, nil
}

func (t *telemetryStorageImpl) GetLatestReading(ctx context.Context, deviceID string) (types.Reading, error) {
	return t.s.GetLatestReading(ctx, deviceID)
}

func (t *telemetryStorageImpl) QueryReadings(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Reading], error) {
	return t.s.QueryReadings(ctx, conditions...)
}

type service struct {
	storage   TelemetryStorage
	messenger messaging.MsgContext
	fanout    fanout.Fanout
	notifier  events.EventSender
	config    irrigation.Config
}

func New(storage TelemetryStorage, messenger messaging.MsgContext, fan fanout.Fanout, notifier events.EventSender, cfg irrigation.Config) TelemetryService {
	return &service{
		storage:   storage,
		messenger: messenger,
		fanout:    fan,
		notifier:  notifier,
		config:    cfg,
	}
}

func (s *service) Ingest(ctx context.Context, upload Upload) (IngestResult, error) {
	ctx, span := tracer.Start(ctx, "ingest-upload")
	defer span.End()

	if upload.DeviceID == "" || upload.Moisture == nil {
		return IngestResult{}, ErrInvalidUpload
	}

	zone := upload.Zone
	if zone == "" {
		zone = "Unassigned"
	}

	device := types.Device{
		DeviceID: upload.DeviceID,
		Name:     fmt.Sprintf("Device %s", upload.DeviceID),
		Zone:     zone,
	}

	sunlight := 0
	if upload.Sunlight != nil {
		sunlight = *upload.Sunlight
	}

	reading := types.Reading{
		DeviceID:    upload.DeviceID,
		Moisture:    *upload.Moisture,
		Temperature: upload.Temperature,
		Humidity:    upload.Humidity,
		Sunlight:    sunlight,
	}

	command := irrigation.Decide(*upload.Moisture, s.config)

	var entry *types.CommandLogEntry
	if command.Valid() {
		entry = &types.CommandLogEntry{
			CommandID: uuid.NewString(),
			DeviceID:  upload.DeviceID,
			Command:   command,
			Source:    types.SourceAuto,
		}
	}

	stored, err := s.storage.IngestReading(ctx, device, reading, entry)
	if err != nil {
		return IngestResult{}, err
	}

	if entry != nil {
		irrigation.Announce(ctx, s.fanout, s.messenger, s.notifier, *entry)
	}

	return IngestResult{Reading: stored, Command: command}, nil
}

func (s *service) Latest(ctx context.Context, deviceID string) (types.Reading, bool, error) {
	reading, err := s.storage.GetLatestReading(ctx, deviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return types.Reading{}, false, nil
		}
		return types.Reading{}, false, err
	}

	return reading, true, nil
}

func (s *service) History(ctx context.Context, deviceID string, limit int, before time.Time) ([]types.Reading, error) {
	conditions := []storage.ConditionFunc{storage.WithDeviceID(deviceID)}

	if limit > 0 {
		conditions = append(conditions, storage.WithLimit(limit))
	}
	if !before.IsZero() {
		conditions = append(conditions, storage.WithBefore(before))
	}

	collection, err := s.storage.QueryReadings(ctx, conditions...)
	if err != nil {
		return nil, err
	}

	return collection.Data, nil
}

package devices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

var ErrDeviceNotFound = fmt.Errorf("device not found")
var ErrDeviceAlreadyExist = fmt.Errorf("device already exists")

// DeviceRegistry is the explicit management surface for devices. The
// auto-discovery path on upload lives in the ingestion pipeline and never
// goes through Register.
//
//go:generate moq -rm -out devices_mock.go . DeviceRegistry
type DeviceRegistry interface {
	Register(ctx context.Context, device types.Device) (types.Device, error)
	Get(ctx context.Context, deviceID string) (types.Device, error)
	List(ctx context.Context, params map[string][]string) (types.Collection[types.Device], error)
	Remove(ctx context.Context, deviceID string) error
}

//go:generate moq -rm -out devicestorage_mock.go . DeviceStorage
type DeviceStorage interface {
	AddDevice(ctx context.Context, device types.Device) (types.Device, error)
	GetDevice(ctx context.Context, deviceID string) (types.Device, error)
	QueryDevices(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Device], error)
	DeleteDevice(ctx context.Context, deviceID string) error
}

func NewStorage(s *storage.Storage) DeviceStorage {
	return s
}

type registry struct {
	storage DeviceStorage
}

func New(storage DeviceStorage) DeviceRegistry {
	return &registry{storage: storage}
}

func (r *registry) Register(ctx context.Context, device types.Device) (types.Device, error) {
	if device.DeviceID == "" {
		return types.Device{}, ErrDeviceNotFound
	}

	if device.Name == "" {
		device.Name = fmt.Sprintf("Device %s", device.DeviceID)
	}
	if device.Zone == "" {
		device.Zone = "Unassigned"
	}

	d, err := r.storage.AddDevice(ctx, device)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExist) {
			return types.Device{}, ErrDeviceAlreadyExist
		}
		return types.Device{}, err
	}

	return d, nil
}

func (r *registry) Get(ctx context.Context, deviceID string) (types.Device, error) {
	d, err := r.storage.GetDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return types.Device{}, ErrDeviceNotFound
		}
		return types.Device{}, err
	}

	return d, nil
}

// List returns devices newest-created-first. Query parameters narrow the
// result the same way the dashboard filters do.
func (r *registry) List(ctx context.Context, params map[string][]string) (types.Collection[types.Device], error) {
	conditions := make([]storage.ConditionFunc, 0)

	for k, v := range params {
		switch strings.ToLower(k) {
		case "zone":
			conditions = append(conditions, storage.WithZone(v[0]))
		case "status":
			conditions = append(conditions, storage.WithStatus(strings.ToUpper(v[0])))
		case "search":
			conditions = append(conditions, storage.WithSearch(v[0]))
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithLimit(limit))
		case "offset":
			offset, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithOffset(offset))
		}
	}

	return r.storage.QueryDevices(ctx, conditions...)
}

func (r *registry) Remove(ctx context.Context, deviceID string) error {
	err := r.storage.DeleteDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return ErrDeviceNotFound
		}
		return err
	}

	return nil
}

package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// SeedDevices pre-registers operator provisioned devices from a csv file with
// the header "device_id;name;zone;location". Devices that already exist are
// left untouched; seeding never flips a device ONLINE.
func SeedDevices(ctx context.Context, s *Storage, reader io.ReadCloser) error {
	defer reader.Close()

	log := logging.GetFromContext(ctx)

	r := csv.NewReader(reader)
	r.Comma = ';'
	r.FieldsPerRecord = 4

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("could not read devices seed file: %w", err)
	}

	for i, row := range rows {
		if i == 0 && row[0] == "device_id" {
			continue
		}

		device := types.Device{
			DeviceID: row[0],
			Name:     row[1],
			Zone:     row[2],
			Location: row[3],
		}

		if device.DeviceID == "" {
			continue
		}
		if device.Zone == "" {
			device.Zone = "Unassigned"
		}

		_, err := s.AddDevice(ctx, device)
		if err != nil {
			if errors.Is(err, ErrAlreadyExist) {
				log.Debug("device already exists, skipping", "device_id", device.DeviceID)
				continue
			}
			return err
		}

		log.Info("seeded new device", "device_id", device.DeviceID)
	}

	return nil
}

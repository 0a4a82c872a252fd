package api

import (
	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/samber/lo"
)

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	Message string        `json:"message"`
	Data    types.Reading `json:"data"`
	Command types.Command `json:"command"`
}

type controlRequest struct {
	DeviceID string        `json:"device_id"`
	Command  types.Command `json:"command"`
}

type controlResponse struct {
	Message  string        `json:"message"`
	DeviceID string        `json:"device_id"`
	Command  types.Command `json:"command"`
}

type commandStatusResponse struct {
	DeviceID string        `json:"device_id"`
	Command  types.Command `json:"command"`
}

type registerRequest struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Zone     string `json:"zone"`
	Location string `json:"location"`
}

func (r registerRequest) toDevice() types.Device {
	return types.Device{
		DeviceID: r.DeviceID,
		Name:     r.Name,
		Zone:     r.Zone,
		Location: r.Location,
	}
}

func orEmpty[T any](data []T) []T {
	return lo.Ternary(data != nil, data, []T{})
}

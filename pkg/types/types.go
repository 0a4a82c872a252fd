package types

import (
	"time"
)

const (
	StatusOnline  string = "ONLINE"
	StatusOffline string = "OFFLINE"
)

// Device is a registered (or auto-discovered) field device. The device id is
// assigned externally and never changes once the row exists.
type Device struct {
	DeviceID  string    `json:"device_id"`
	Name      string    `json:"name"`
	Zone      string    `json:"zone"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Reading is one persisted sensor measurement tuple. Readings are append-only
// and immutable once written.
type Reading struct {
	ID          int64    `json:"id"`
	DeviceID    string   `json:"device_id"`
	Moisture    float64  `json:"moisture"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	// Sunlight is the raw analog value as reported by the firmware. Lower
	// values mean brighter; inverting it is a presentation concern.
	Sunlight  int       `json:"sunlight"`
	CreatedAt time.Time `json:"created_at"`
}

type Command string

const (
	CommandOn   Command = "ON"
	CommandOff  Command = "OFF"
	CommandNone Command = "NONE"
)

func (c Command) Valid() bool {
	return c == CommandOn || c == CommandOff
}

type Source string

const (
	SourceAuto   Source = "AUTO"
	SourceManual Source = "MANUAL"
)

// CommandLogEntry is one row of the append-only irrigation audit trail. The
// log never represents current pump state by itself; that is derived as the
// most recent entry for a device.
type CommandLogEntry struct {
	CommandID string    `json:"command_id"`
	DeviceID  string    `json:"device_id"`
	Command   Command   `json:"command"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type Collection[T any] struct {
	Data       []T
	Count      uint64
	Offset     uint64
	Limit      uint64
	TotalCount uint64
}

package irrigation

import (
	"testing"

	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestDecide(t *testing.T) {
	is := is.New(t)

	cfg := DefaultConfig()

	tests := []struct {
		moisture float64
		expected types.Command
	}{
		{10, types.CommandOn},
		{39.9, types.CommandOn},
		{40, types.CommandNone},
		{50, types.CommandNone},
		{60, types.CommandNone},
		{60.1, types.CommandOff},
		{95, types.CommandOff},
		{0, types.CommandOn},
		{100, types.CommandOff},
	}

	for _, tt := range tests {
		is.Equal(tt.expected, Decide(tt.moisture, cfg))
	}
}

func TestDecideWithCustomThresholds(t *testing.T) {
	is := is.New(t)

	cfg := Config{MoistureLow: 30, MoistureBand: 40}

	is.Equal(types.CommandOn, Decide(29.9, cfg))
	is.Equal(types.CommandNone, Decide(30, cfg))
	is.Equal(types.CommandNone, Decide(70, cfg))
	is.Equal(types.CommandOff, Decide(70.1, cfg))
}

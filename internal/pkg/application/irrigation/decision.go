package irrigation

import (
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// Config holds the thresholds for the automation rule. The defaults mirror
// the firmware contract: pump on below 40, off above 60, nothing in between.
type Config struct {
	MoistureLow  float64 `yaml:"moisturelow"`
	MoistureBand float64 `yaml:"moistureband"`
}

func DefaultConfig() Config {
	return Config{
		MoistureLow:  40,
		MoistureBand: 20,
	}
}

// Decide maps a moisture reading to an irrigation command. Both comparisons
// are strict, so a reading exactly on either threshold yields NONE. The rule
// is deliberately stateless: it does not look at the previously commanded
// state, and rapid oscillation across a boundary on successive uploads is
// the contract, not a bug.
func Decide(moisture float64, cfg Config) types.Command {
	switch {
	case moisture < cfg.MoistureLow:
		return types.CommandOn
	case moisture > cfg.MoistureLow+cfg.MoistureBand:
		return types.CommandOff
	default:
		return types.CommandNone
	}
}

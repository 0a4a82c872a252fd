package main

import (
	"io"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestParseExternalConfigFile(t *testing.T) {
	is := is.New(t)

	cfg, err := parseExternalConfigFile(io.NopCloser(strings.NewReader(configYaml)))
	is.NoErr(err)

	is.Equal(35.0, cfg.Irrigation.MoistureLow)
	is.Equal(30.0, cfg.Irrigation.MoistureBand)
	is.Equal(1, len(cfg.Notifications))
}

func TestParseExternalConfigFileFallsBackToDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := parseExternalConfigFile(io.NopCloser(strings.NewReader("notifications: []\n")))
	is.NoErr(err)

	is.Equal(40.0, cfg.Irrigation.MoistureLow)
	is.Equal(20.0, cfg.Irrigation.MoistureBand)
}

const configYaml string = `
irrigation:
  moisturelow: 35
  moistureband: 30
notifications:
  - id: command-issued
    name: pump commands
    type: krishisense.commandissued
    subscribers:
      - endpoint: http://dashboard:8080/hooks/commands
`

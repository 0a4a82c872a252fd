package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestLoadConfiguration(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(configYaml))
	is.NoErr(err)
	is.Equal(1, len(cfg.Notifications))
	is.Equal("krishisense.commandissued", cfg.Notifications[0].Type)
	is.Equal(2, len(cfg.Notifications[0].Subscribers))
	is.Equal("http://dashboard:8080/hooks/commands", cfg.Notifications[0].Subscribers[0].Endpoint)
}

func TestSendWithoutSubscribersIsANoOp(t *testing.T) {
	is := is.New(t)

	sender := New(nil)

	err := sender.Send(context.Background(), types.CommandLogEntry{
		DeviceID:  "KS-001",
		Command:   types.CommandOn,
		Source:    types.SourceAuto,
		CreatedAt: time.Now().UTC(),
	})
	is.NoErr(err)
}

const configYaml string = `
notifications:
  - id: command-issued
    name: pump commands
    type: krishisense.commandissued
    subscribers:
      - endpoint: http://dashboard:8080/hooks/commands
      - endpoint: http://automation:9090/events
`

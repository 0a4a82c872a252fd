package events

import (
	"context"
	"fmt"
	"io"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/krishisense/farm-telemetry/pkg/types"
	yaml "gopkg.in/yaml.v2"
)

const commandIssuedType string = "krishisense.commandissued"

// EventSender notifies external subscribers (dashboards, automation hooks)
// about issued commands via cloudevents over HTTP. Sending is best effort;
// a failed webhook never fails the pipeline that triggered it.
type EventSender interface {
	Send(ctx context.Context, entry types.CommandLogEntry) error
}

type eventSender struct {
	subscribers map[string][]SubscriberConfig
}

func New(cfg *Config) EventSender {
	e := &eventSender{
		subscribers: make(map[string][]SubscriberConfig),
	}

	if cfg != nil {
		for _, n := range cfg.Notifications {
			e.subscribers[n.Type] = n.Subscribers
		}
	}

	return e
}

func (e *eventSender) Send(ctx context.Context, entry types.CommandLogEntry) error {
	if s, ok := e.subscribers[commandIssuedType]; !ok || len(s) == 0 {
		return nil
	}

	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%d", entry.DeviceID, entry.CreatedAt.Unix()))
	event.SetTime(entry.CreatedAt)
	event.SetSource("github.com/krishisense/farm-telemetry")
	event.SetType(commandIssuedType)

	eventData := struct {
		DeviceID  string `json:"device_id"`
		Command   string `json:"command"`
		Source    string `json:"source"`
		Timestamp string `json:"timestamp"`
	}{
		DeviceID:  entry.DeviceID,
		Command:   string(entry.Command),
		Source:    string(entry.Source),
		Timestamp: entry.CreatedAt.Format(time.RFC3339Nano),
	}

	err = event.SetData(cloudevents.ApplicationJSON, eventData)
	if err != nil {
		return err
	}

	logger := logging.GetFromContext(ctx)

	for _, s := range e.subscribers[commandIssuedType] {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) {
			logger.Error("failed to send event to subscriber", "endpoint", s.Endpoint, "err", result.Error())
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

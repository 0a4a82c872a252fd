// Package mqttbridge lets devices on constrained networks push telemetry over
// MQTT instead of HTTP. Uploads arriving on farm/<deviceID>/telemetry flow
// through the same ingestion pipeline as the HTTP endpoint, and any resulting
// pump command is published back on farm/<deviceID>/command.
package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/telemetry"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

type Config struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// LoadConfiguration reads broker settings from the environment. The bridge is
// off unless MQTT_BROKER_URL is set.
func LoadConfiguration(ctx context.Context) Config {
	broker := env.GetVariableOrDefault(ctx, "MQTT_BROKER_URL", "")

	return Config{
		Enabled:  broker != "",
		Broker:   broker,
		ClientID: env.GetVariableOrDefault(ctx, "MQTT_CLIENT_ID", "farm-telemetry"),
		Username: env.GetVariableOrDefault(ctx, "MQTT_USERNAME", ""),
		Password: env.GetVariableOrDefault(ctx, "MQTT_PASSWORD", ""),
		Topic:    env.GetVariableOrDefault(ctx, "MQTT_TELEMETRY_TOPIC", "farm/+/telemetry"),
	}
}

type Bridge struct {
	client mqtt.Client
	cfg    Config
	svc    telemetry.TelemetryService
}

func New(ctx context.Context, cfg Config, svc telemetry.TelemetryService) (*Bridge, error) {
	log := logging.GetFromContext(ctx)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "err", err.Error())
	})

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker: %w", token.Error())
	}

	log.Info("connected to mqtt broker", "broker", cfg.Broker)

	return &Bridge{client: client, cfg: cfg, svc: svc}, nil
}

func (b *Bridge) Start(ctx context.Context) error {
	log := logging.GetFromContext(ctx)

	token := b.client.Subscribe(b.cfg.Topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		b.handleMessage(ctx, msg)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.cfg.Topic, token.Error())
	}

	log.Info("subscribed to telemetry topic", "topic", b.cfg.Topic)

	return nil
}

func (b *Bridge) Stop() {
	b.client.Disconnect(250)
}

func (b *Bridge) handleMessage(ctx context.Context, msg mqtt.Message) {
	log := logging.GetFromContext(ctx)

	var upload telemetry.Upload
	if err := json.Unmarshal(msg.Payload(), &upload); err != nil {
		log.Error("failed to unmarshal telemetry message", "topic", msg.Topic(), "err", err.Error())
		return
	}

	// the topic segment wins over any device id in the payload, so a device
	// can not publish readings on behalf of another
	if deviceID := deviceIDFromTopic(msg.Topic()); deviceID != "" {
		upload.DeviceID = deviceID
	}

	result, err := b.svc.Ingest(ctx, upload)
	if err != nil {
		log.Error("failed to ingest telemetry message", "device_id", upload.DeviceID, "err", err.Error())
		return
	}

	if result.Command.Valid() {
		b.publishCommand(ctx, upload.DeviceID, result.Command)
	}
}

func (b *Bridge) publishCommand(ctx context.Context, deviceID string, command types.Command) {
	log := logging.GetFromContext(ctx)

	payload, _ := json.Marshal(struct {
		Command types.Command `json:"command"`
	}{Command: command})

	topic := fmt.Sprintf("farm/%s/command", deviceID)

	token := b.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		log.Error("failed to publish command", "topic", topic, "err", token.Error().Error())
	}
}

func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return ""
	}

	return parts[1]
}

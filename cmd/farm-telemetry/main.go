package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/joho/godotenv"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/devices"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/events"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/irrigation"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/telemetry"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/mqttbridge"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/router"
	"github.com/krishisense/farm-telemetry/internal/pkg/infrastructure/storage"
	"github.com/krishisense/farm-telemetry/internal/pkg/presentation/api"
	"github.com/krishisense/farm-telemetry/internal/pkg/presentation/api/auth"
	yaml "gopkg.in/yaml.v2"
)

const serviceName string = "farm-telemetry"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort

	configurationFile
	devicesFile

	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode

	tokenSecret
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",

		configurationFile: "",
		devicesFile:       "",

		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "farm",
		dbSSLMode:  "disable",

		tokenSecret: "",
	}
}

type appConfig struct {
	Irrigation    irrigation.Config     `yaml:"irrigation"`
	Notifications []events.Notification `yaml:"notifications"`
}

func main() {
	godotenv.Load()

	ctx, flags := parseExternalConfig(context.Background(), defaultFlags())

	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(ctx, serviceName, serviceVersion, "json")
	defer cleanup()

	if flags[tokenSecret] == "" {
		exitIf(errors.New("JWT_SECRET is not set"), logger, "refusing to start without a token secret")
	}

	cfg := &appConfig{Irrigation: irrigation.DefaultConfig()}
	if flags[configurationFile] != "" {
		f, err := os.Open(flags[configurationFile])
		exitIf(err, logger, "could not open configuration file")

		cfg, err = parseExternalConfigFile(f)
		exitIf(err, logger, "could not parse configuration file")
	}

	s, err := storage.New(ctx, storage.NewConfig(
		flags[dbHost], flags[dbUser], flags[dbPassword], flags[dbPort], flags[dbName], flags[dbSSLMode],
	))
	exitIf(err, logger, "could not connect to database")
	defer s.Close()

	err = s.Initialize(ctx)
	exitIf(err, logger, "could not initialize database")

	if flags[devicesFile] != "" {
		f, err := os.Open(flags[devicesFile])
		exitIf(err, logger, "could not open devices file")

		err = storage.SeedDevices(ctx, s, f)
		exitIf(err, logger, "could not seed devices")
	}

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, logger))
	exitIf(err, logger, "failed to init messenger")
	defer messenger.Close()

	fan := fanout.New()
	defer fan.Shutdown()

	notifier := events.New(&events.Config{Notifications: cfg.Notifications})

	telemetrySvc := telemetry.New(telemetry.NewStorage(s), messenger, fan, notifier, cfg.Irrigation)
	registry := devices.New(devices.NewStorage(s))
	irrigationSvc := irrigation.New(irrigation.NewStorage(s), messenger, fan, notifier)

	messenger.Start()

	err = telemetrySvc.RegisterTopicMessageHandler(ctx)
	exitIf(err, logger, "failed to register topic message handler")

	if mqttCfg := mqttbridge.LoadConfiguration(ctx); mqttCfg.Enabled {
		bridge, err := mqttbridge.New(ctx, mqttCfg, telemetrySvc)
		exitIf(err, logger, "failed to connect mqtt bridge")
		defer bridge.Stop()

		err = bridge.Start(ctx)
		exitIf(err, logger, "failed to start mqtt bridge")
	}

	mux := router.New(serviceName)
	_, err = api.RegisterHandlers(ctx, mux, auth.New(flags[tokenSecret]), telemetrySvc, registry, irrigationSvc, fan)
	exitIf(err, logger, "failed to register handlers")

	runServer(ctx, flags[listenAddress]+":"+flags[servicePort], mux)
}

func runServer(ctx context.Context, addr string, handler http.Handler) {
	logger := logging.GetFromContext(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting http server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		exitIf(err, logger, "http server failed")
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		exitIf(err, logger, "graceful shutdown failed")
	}
}

func parseExternalConfigFile(cfgFile io.ReadCloser) (*appConfig, error) {
	defer cfgFile.Close()

	b, err := io.ReadAll(cfgFile)
	if err != nil {
		return nil, err
	}

	cfg := &appConfig{Irrigation: irrigation.DefaultConfig()}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Irrigation.MoistureLow == 0 && cfg.Irrigation.MoistureBand == 0 {
		cfg.Irrigation = irrigation.DefaultConfig()
	}

	return cfg, nil
}

func parseExternalConfig(ctx context.Context, flags flagMap) (context.Context, flagMap) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])

	flags[dbHost] = envOrDef(ctx, "POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef(ctx, "POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef(ctx, "POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef(ctx, "POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef(ctx, "POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef(ctx, "POSTGRES_SSLMODE", flags[dbSSLMode])

	flags[tokenSecret] = envOrDef(ctx, "JWT_SECRET", flags[tokenSecret])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "service configuration file", apply(configurationFile))
	flag.Func("devices", "list of devices to seed", apply(devicesFile))
	flag.Parse()

	return ctx, flags
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}

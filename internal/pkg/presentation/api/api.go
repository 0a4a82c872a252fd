package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/devices"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/fanout"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/irrigation"
	"github.com/krishisense/farm-telemetry/internal/pkg/application/telemetry"
	"github.com/krishisense/farm-telemetry/internal/pkg/presentation/api/auth"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("farm-telemetry/api")

func RegisterHandlers(ctx context.Context, router *chi.Mux, tokenAuth *jwtauth.JWTAuth, telemetrySvc telemetry.TelemetryService, registry devices.DeviceRegistry, irrigationSvc irrigation.IrrigationService, fan fanout.Fanout) (*chi.Mux, error) {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log := logging.GetFromContext(ctx)

	// device sessions hold a long lived event stream connection per device,
	// addressed as /events/command_<deviceID>
	router.Mount("/events", fan.Handler())

	router.Route("/api", func(r chi.Router) {
		// devices upload without credentials
		r.Post("/sensor/upload", uploadHandler(log, telemetrySvc))

		r.Group(func(r chi.Router) {
			r.Use(auth.Protect(tokenAuth))

			r.Route("/sensor", func(r chi.Router) {
				r.Get("/latest/{deviceID}", latestReadingHandler(log, telemetrySvc))
				r.Get("/history/{deviceID}", readingHistoryHandler(log, telemetrySvc))
			})

			r.Route("/irrigation", func(r chi.Router) {
				r.Post("/control", manualControlHandler(log, irrigationSvc))
				r.Get("/status/{deviceID}", irrigationStatusHandler(log, irrigationSvc))
			})

			r.Route("/device", func(r chi.Router) {
				r.Post("/register", registerDeviceHandler(log, registry))
				r.Get("/list", listDevicesHandler(log, registry))
				r.Get("/{deviceID}", getDeviceHandler(log, registry))
				r.Delete("/{deviceID}", removeDeviceHandler(log, registry))
			})
		})
	})

	return router, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func uploadHandler(log *slog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "upload-reading")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Missing required fields"})
			return
		}

		var upload telemetry.Upload
		err = json.Unmarshal(body, &upload)
		if err != nil {
			requestLogger.Error("unable to unmarshal body", "err", err.Error())
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Missing required fields"})
			return
		}

		result, err := svc.Ingest(ctx, upload)
		if err != nil {
			if errors.Is(err, telemetry.ErrInvalidUpload) {
				requestLogger.Debug("rejected upload", "device_id", upload.DeviceID)
				writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Missing required fields"})
				return
			}

			requestLogger.Error("unable to ingest reading", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{
			Message: "Data uploaded successfully",
			Data:    result.Reading,
			Command: result.Command,
		})
	}
}

func latestReadingHandler(log *slog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-latest-reading")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")

		reading, found, err := svc.Latest(ctx, deviceID)
		if err != nil {
			requestLogger.Error("unable to fetch latest reading", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		// a device with no readings yet answers with an empty object so
		// dashboard polling does not have to special case 404
		if !found {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}

		writeJSON(w, http.StatusOK, reading)
	}
}

func readingHistoryHandler(log *slog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-reading-history")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")

		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			limit, _ = strconv.Atoi(l)
		}

		var before time.Time
		if b := r.URL.Query().Get("before"); b != "" {
			before, err = time.Parse(time.RFC3339, b)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request"})
				return
			}
		}

		readings, err := svc.History(ctx, deviceID, limit, before)
		if err != nil {
			requestLogger.Error("unable to fetch reading history", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, orEmpty(readings))
	}
}

func manualControlHandler(log *slog.Logger, svc irrigation.IrrigationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "manual-pump-control")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var req controlRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request"})
			return
		}

		entry, err := svc.ManualControl(ctx, req.DeviceID, req.Command)
		if err != nil {
			if errors.Is(err, irrigation.ErrInvalidCommand) {
				writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request"})
				return
			}

			requestLogger.Error("unable to issue command", "device_id", req.DeviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		requestLogger.Info("manual pump control", "device_id", entry.DeviceID, "command", entry.Command, "issued_by", auth.Subject(ctx))

		writeJSON(w, http.StatusOK, controlResponse{
			Message:  "Pump turned " + string(entry.Command),
			DeviceID: entry.DeviceID,
			Command:  entry.Command,
		})
	}
}

func irrigationStatusHandler(log *slog.Logger, svc irrigation.IrrigationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-irrigation-status")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")

		command, err := svc.CurrentCommand(ctx, deviceID)
		if err != nil {
			requestLogger.Error("unable to fetch irrigation status", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, commandStatusResponse{
			DeviceID: deviceID,
			Command:  command,
		})
	}
}

func registerDeviceHandler(log *slog.Logger, registry devices.DeviceRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "register-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var req registerRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.DeviceID == "" {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request"})
			return
		}

		device, err := registry.Register(ctx, req.toDevice())
		if err != nil {
			if errors.Is(err, devices.ErrDeviceAlreadyExist) {
				writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Device already registered"})
				return
			}

			requestLogger.Error("unable to register device", "device_id", req.DeviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, device)
	}
}

func listDevicesHandler(log *slog.Logger, registry devices.DeviceRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-devices")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collection, err := registry.List(ctx, r.URL.Query())
		if err != nil {
			requestLogger.Error("unable to list devices", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, orEmpty(collection.Data))
	}
}

func getDeviceHandler(log *slog.Logger, registry devices.DeviceRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")

		device, err := registry.Get(ctx, deviceID)
		if err != nil {
			if errors.Is(err, devices.ErrDeviceNotFound) {
				requestLogger.Debug("device not found", "device_id", deviceID)
				w.WriteHeader(http.StatusNotFound)
				return
			}

			requestLogger.Error("unable to fetch device", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, device)
	}
}

func removeDeviceHandler(log *slog.Logger, registry devices.DeviceRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "remove-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")

		err = registry.Remove(ctx, deviceID)
		if err != nil {
			if errors.Is(err, devices.ErrDeviceNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			requestLogger.Error("unable to remove device", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		requestLogger.Info("device removed", "device_id", deviceID)
		w.WriteHeader(http.StatusNoContent)
	}
}

package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

// RegisterTopicMessageHandler wires uploads arriving over the message broker
// into the same pipeline the HTTP surface uses.
func (s *service) RegisterTopicMessageHandler(ctx context.Context) error {
	return s.messenger.RegisterTopicMessageHandler("telemetry-upload", NewUploadHandler(s))
}

func NewUploadHandler(svc TelemetryService) messaging.TopicMessageHandler {
	return func(ctx context.Context, itm messaging.IncomingTopicMessage, l *slog.Logger) {
		var err error

		ctx, span := tracer.Start(ctx, "telemetry-upload")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, l, ctx)

		upload := Upload{}
		err = json.Unmarshal(itm.Body(), &upload)
		if err != nil {
			log.Error("failed to unmarshal message", "err", err.Error())
			return
		}

		ctx = logging.NewContextWithLogger(ctx, log, slog.String("device_id", upload.DeviceID))

		_, err = svc.Ingest(ctx, upload)
		if err != nil {
			log.Error("could not ingest upload", "err", err.Error())
			return
		}
	}
}

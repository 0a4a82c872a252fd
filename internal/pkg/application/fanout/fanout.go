package fanout

import (
	"context"
	"encoding/json"
	"net/http"
	"path"

	gosse "github.com/alexandrevicenzi/go-sse"
	"github.com/krishisense/farm-telemetry/pkg/types"
)

// Fanout is the best-effort push channel towards connected device sessions.
// Each device session subscribes to its own channel, named command_<deviceID>.
// Delivery is at-most-once with no persistence and no acknowledgement: a
// message published while nobody is subscribed is simply dropped. Devices
// that miss a push pick the decision up from their next upload response.
//
//go:generate moq -rm -out fanout_mock.go . Fanout
type Fanout interface {
	Handler() http.Handler
	Publish(ctx context.Context, deviceID string, command types.Command) error
	Shutdown()
}

type fanout struct {
	s *gosse.Server
}

func New() Fanout {
	return &fanout{
		s: gosse.NewServer(&gosse.Options{
			// channels are addressed by the last path segment, so a device
			// session connecting to /events/command_KS-001 lands on the
			// channel its commands are published to
			ChannelNameFunc: func(r *http.Request) string {
				return path.Base(r.URL.Path)
			},
		}),
	}
}

func ChannelName(deviceID string) string {
	return "command_" + deviceID
}

func (f *fanout) Handler() http.Handler {
	return f.s
}

func (f *fanout) Shutdown() {
	f.s.Shutdown()
}

func (f *fanout) Publish(ctx context.Context, deviceID string, command types.Command) error {
	payload := struct {
		Command types.Command `json:"command"`
	}{
		Command: command,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	f.s.SendMessage(ChannelName(deviceID), gosse.NewMessage("", string(b), "command"))

	return nil
}

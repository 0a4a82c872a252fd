package fanout

import (
	"context"
	"testing"

	"github.com/krishisense/farm-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestChannelName(t *testing.T) {
	is := is.New(t)

	is.Equal("command_KS-001", ChannelName("KS-001"))
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	is := is.New(t)

	fan := New()
	defer fan.Shutdown()

	// nobody is listening on the channel, the message just evaporates
	err := fan.Publish(context.Background(), "KS-001", types.CommandOn)
	is.NoErr(err)
}

func TestHandlerIsServable(t *testing.T) {
	is := is.New(t)

	fan := New()
	defer fan.Shutdown()

	is.True(fan.Handler() != nil)
}

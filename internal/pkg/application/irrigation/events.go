package irrigation

import (
	"encoding/json"
	"time"

	"github.com/krishisense/farm-telemetry/pkg/types"
)

// CommandIssued is published on the message broker whenever a command is
// appended to the audit trail, whether the trigger was AUTO or MANUAL.
type CommandIssued struct {
	CommandID string        `json:"command_id"`
	DeviceID  string        `json:"device_id"`
	Command   types.Command `json:"command"`
	Source    types.Source  `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
}

func (c *CommandIssued) ContentType() string {
	return "application/json"
}

func (c *CommandIssued) TopicName() string {
	return "irrigation.commandIssued"
}

func (c *CommandIssued) Body() []byte {
	b, _ := json.Marshal(c)
	return b
}

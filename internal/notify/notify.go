// Package notify holds the delivery channels a dispatch fans out to.
//
// Channels are a closed set of variants behind the Notifier interface,
// selected by the Factory. Adding a channel means adding a variant and a
// factory case.
package notify

import (
	"context"

	"cchook/internal/config"
)

// Notifier is one delivery channel. Send must never panic or propagate an
// error: every channel-internal failure becomes a failed DeliveryOutcome.
type Notifier interface {
	Name() config.ChannelType
	Send(ctx context.Context, p Payload) DeliveryOutcome
}

// DeliveryOutcome is the per-channel result of one send.
type DeliveryOutcome struct {
	Success bool
	Error   string
}

func ok() DeliveryOutcome { return DeliveryOutcome{Success: true} }

func fail(err error) DeliveryOutcome {
	if err == nil {
		return DeliveryOutcome{Success: false, Error: "notification failed"}
	}
	return DeliveryOutcome{Success: false, Error: err.Error()}
}

func failMsg(msg string) DeliveryOutcome {
	return DeliveryOutcome{Success: false, Error: msg}
}

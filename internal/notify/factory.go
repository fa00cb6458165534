package notify

import (
	"context"
	"errors"
	"fmt"

	"cchook/internal/config"
	"cchook/pkg/logx"
)

// ErrUnsupportedChannel wraps every unknown-channel-type construction error.
var ErrUnsupportedChannel = errors.New("unsupported notification type")

// Factory is the sole authority mapping channel-type identifiers to
// constructed notifiers.
type Factory struct {
	log logx.Logger

	// FallbackConsole restores the deprecated behavior of downgrading an
	// unknown or unbuildable channel to the console notifier instead of
	// failing. Off everywhere except the legacy CLI path.
	FallbackConsole bool
}

func NewFactory(log logx.Logger) *Factory {
	return &Factory{log: log}
}

// SupportedTypes lists constructible channels in display order.
func (f *Factory) SupportedTypes() []config.ChannelType {
	return []config.ChannelType{
		config.ChannelDingTalk,
		config.ChannelDesktop,
		config.ChannelTelegram,
		config.ChannelConsole,
	}
}

// Create builds the notifier for channelType from its settings sub-record.
// Unknown types fail with the supported list in the message; with
// FallbackConsole set, unknown and unbuildable channels degrade to console.
func (f *Factory) Create(channelType config.ChannelType, n config.NotificationsConfig) (Notifier, error) {
	var (
		notifier Notifier
		err      error
	)
	switch channelType {
	case config.ChannelDingTalk:
		notifier, err = NewDingTalk(n.DingTalk)
	case config.ChannelDesktop:
		notifier = NewDesktop(n.Desktop, f.log)
	case config.ChannelTelegram:
		notifier, err = NewTelegram(n.Telegram)
	case config.ChannelConsole:
		notifier = NewConsole(nil)
	default:
		err = fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedChannel, channelType, joinTypes(f.SupportedTypes()))
	}

	if err != nil {
		if f.FallbackConsole {
			f.log.Warn("channel unavailable, falling back to console",
				logx.String("type", string(channelType)), logx.Err(err))
			return NewConsole(nil), nil
		}
		return nil, err
	}
	return notifier, nil
}

// TestChannel constructs the channel and pushes a fixed self-test payload
// through it, returning the delivery outcome.
func (f *Factory) TestChannel(ctx context.Context, channelType config.ChannelType, n config.NotificationsConfig) DeliveryOutcome {
	notifier, err := f.Create(channelType, n)
	if err != nil {
		return fail(err)
	}
	return notifier.Send(ctx, SelfTestPayload(channelType))
}

// SelfTestPayload is the fixed content `cchook test` sends.
func SelfTestPayload(channelType config.ChannelType) Payload {
	return Payload{
		Title:    "cchook test",
		Message:  fmt.Sprintf("This is a test notification for the %s channel", channelType),
		Subtitle: "If you can see this, notifications are working",
	}
}

func joinTypes(types []config.ChannelType) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		s += string(t)
	}
	return s
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cchook/internal/config"
	"cchook/pkg/logx"
)

func TestFactoryCreateKnownTypes(t *testing.T) {
	f := NewFactory(logx.Nop())
	n := config.NotificationsConfig{
		DingTalk: config.DingTalkSettings{AccessToken: "t", Secret: "s"},
		Telegram: config.TelegramSettings{Token: "tok", ChatID: 42},
	}

	for _, ch := range f.SupportedTypes() {
		notifier, err := f.Create(ch, n)
		if err != nil {
			t.Fatalf("Create(%s): %v", ch, err)
		}
		if notifier.Name() != ch {
			t.Fatalf("Create(%s) returned a %s notifier", ch, notifier.Name())
		}
	}
}

func TestFactoryCreateUnknownType(t *testing.T) {
	f := NewFactory(logx.Nop())

	_, err := f.Create("carrierpigeon", config.NotificationsConfig{})
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if !errors.Is(err, ErrUnsupportedChannel) {
		t.Fatalf("expected ErrUnsupportedChannel, got %v", err)
	}
	// The message must name every constructible channel.
	for _, ch := range f.SupportedTypes() {
		if !strings.Contains(err.Error(), string(ch)) {
			t.Fatalf("error does not list %s: %v", ch, err)
		}
	}
}

func TestFactoryCreateUnbuildableChannel(t *testing.T) {
	f := NewFactory(logx.Nop())

	if _, err := f.Create(config.ChannelDingTalk, config.NotificationsConfig{}); err == nil {
		t.Fatalf("expected error for dingtalk without credentials")
	}
	if _, err := f.Create(config.ChannelTelegram, config.NotificationsConfig{}); err == nil {
		t.Fatalf("expected error for telegram without token")
	}
}

func TestFactoryFallbackConsole(t *testing.T) {
	f := NewFactory(logx.Nop())
	f.FallbackConsole = true

	notifier, err := f.Create("carrierpigeon", config.NotificationsConfig{})
	if err != nil {
		t.Fatalf("fallback should swallow the error: %v", err)
	}
	if notifier.Name() != config.ChannelConsole {
		t.Fatalf("expected console fallback, got %s", notifier.Name())
	}
}

func TestFactoryTestChannelConsole(t *testing.T) {
	f := NewFactory(logx.Nop())

	out := f.TestChannel(context.Background(), config.ChannelConsole, config.NotificationsConfig{})
	if !out.Success {
		t.Fatalf("console self-test failed: %s", out.Error)
	}
}

func TestSelfTestPayloadNamesChannel(t *testing.T) {
	p := SelfTestPayload(config.ChannelDingTalk)
	if !strings.Contains(p.Message, "dingtalk") {
		t.Fatalf("self-test payload does not name the channel: %q", p.Message)
	}
	if p.IsZero() {
		t.Fatalf("self-test payload must not be empty")
	}
}

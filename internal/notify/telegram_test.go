package notify

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"

	"cchook/internal/config"
)

type fakeTelegramSender struct {
	to   tele.Recipient
	text string
	err  error
}

func (f *fakeTelegramSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.to = to
	f.text, _ = what.(string)
	if f.err != nil {
		return nil, f.err
	}
	return &tele.Message{}, nil
}

func TestNewTelegramRequiresSettings(t *testing.T) {
	if _, err := NewTelegram(config.TelegramSettings{Token: "tok"}); err == nil {
		t.Fatalf("expected error without chatId")
	}
	if _, err := NewTelegram(config.TelegramSettings{ChatID: 42}); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestTelegramSend(t *testing.T) {
	n, err := NewTelegram(config.TelegramSettings{Token: "tok", ChatID: 42})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	fake := &fakeTelegramSender{}
	n.sender = fake
	n.limiter = nil

	out := n.Send(context.Background(), Payload{Title: "Build", Message: "done"})
	if !out.Success {
		t.Fatalf("send failed: %s", out.Error)
	}
	if fake.text != "Build: done" {
		t.Fatalf("sent %q", fake.text)
	}
	chat, ok := fake.to.(*tele.Chat)
	if !ok || chat.ID != 42 {
		t.Fatalf("wrong recipient: %#v", fake.to)
	}
}

func TestTelegramSendFailure(t *testing.T) {
	n, err := NewTelegram(config.TelegramSettings{Token: "tok", ChatID: 42})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	n.sender = &fakeTelegramSender{err: errors.New("chat not found")}
	n.limiter = nil

	out := n.Send(context.Background(), Payload{Message: "hi"})
	if out.Success {
		t.Fatalf("expected failure")
	}
}

func TestTelegramLazyBotInitFailure(t *testing.T) {
	n, err := NewTelegram(config.TelegramSettings{Token: "tok", ChatID: 42})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	n.limiter = nil
	n.newBot = func(string) (telegramSender, error) {
		return nil, errors.New("api unreachable")
	}

	out := n.Send(context.Background(), Payload{Message: "hi"})
	if out.Success {
		t.Fatalf("expected failure when bot init fails")
	}
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"
	"golang.org/x/time/rate"

	"cchook/internal/config"
)

// telegramSender abstracts the telebot send call for tests.
type telegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier delivers through a Telegram bot. The bot handle is built
// lazily on first send: construction must stay offline so a misconfigured
// network cannot block the factory.
type TelegramNotifier struct {
	token  string
	chatID int64

	sender  telegramSender
	newBot  func(token string) (telegramSender, error)
	limiter *rate.Limiter
}

func NewTelegram(set config.TelegramSettings) (*TelegramNotifier, error) {
	if set.Token == "" || set.ChatID == 0 {
		return nil, errors.New("telegram configuration incomplete: token and chatId required")
	}
	return &TelegramNotifier{
		token:  set.Token,
		chatID: set.ChatID,
		newBot: func(token string) (telegramSender, error) {
			// Offline skips the getMe round trip; the send itself is the
			// only network call this channel makes.
			return tele.NewBot(tele.Settings{Token: token, Offline: true})
		},
		// Telegram bots are throttled server-side; pace sends the same way
		// the log sink paces its chat output.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

func (t *TelegramNotifier) Name() config.ChannelType { return config.ChannelTelegram }

func (t *TelegramNotifier) Send(ctx context.Context, p Payload) DeliveryOutcome {
	if p.IsZero() {
		return failMsg("notification requires a message or a title")
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fail(fmt.Errorf("telegram request failed: %w", err))
		}
	}

	if t.sender == nil {
		bot, err := t.newBot(t.token)
		if err != nil {
			return fail(fmt.Errorf("telegram bot init failed: %w", err))
		}
		t.sender = bot
	}

	chat := &tele.Chat{ID: t.chatID}
	_, err := t.sender.Send(chat, p.Flatten(), &tele.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return fail(fmt.Errorf("telegram request failed: %w", err))
	}
	return ok()
}

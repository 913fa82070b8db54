package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastsDrain(t *testing.T) {
	toasts := NewToasts(0)
	toasts.Notify(context.Background(), LevelError, "fetch failed")
	toasts.Notify(context.Background(), LevelSuccess, "saved")
	assert.Equal(t, 2, toasts.Len())

	got := toasts.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, "saved", got[1].Message)
	assert.NotEmpty(t, got[0].ID)

	assert.Empty(t, toasts.Drain())
}

func TestToastsDropOldest(t *testing.T) {
	toasts := NewToasts(2)
	for _, m := range []string{"a", "b", "c"} {
		toasts.Notify(context.Background(), LevelInfo, m)
	}
	got := toasts.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Message)
	assert.Equal(t, "c", got[1].Message)
}

func TestMultiSkipsNil(t *testing.T) {
	a, b := NewToasts(0), NewToasts(0)
	Multi(a, nil, b).Notify(context.Background(), LevelWarning, "low gas")
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramFormatsMessage(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: -100123, prefix: "admin-console"}

	tg.Notify(context.Background(), LevelSuccess, "Swept 3 addresses on BSC")
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(-100123), bot.sent[0].ChatID)
	assert.Equal(t, "✅ [admin-console] Swept 3 addresses on BSC", bot.sent[0].Text)
}

func TestTelegramSwallowsSendErrors(t *testing.T) {
	bot := &fakeBot{err: errors.New("chat not found")}
	tg := &Telegram{bot: bot, chatID: 1, prefix: "x"}
	assert.NotPanics(t, func() { tg.Notify(context.Background(), LevelError, "boom") })
}

package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards notices to an operations chat.
type Telegram struct {
	bot    sender
	chatID int64
	prefix string
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Int64("chat_id", chatID).Msg("Telegram forwarding enabled")
	return &Telegram{bot: bot, chatID: chatID, prefix: "admin-console"}, nil
}

var levelMarks = map[Level]string{
	LevelInfo:    "ℹ️",
	LevelSuccess: "✅",
	LevelWarning: "⚠️",
	LevelError:   "❌",
}

// Notify sends synchronously. Delivery failures are logged, never returned.
func (t *Telegram) Notify(_ context.Context, level Level, message string) {
	text := fmt.Sprintf("%s [%s] %s", levelMarks[level], t.prefix, message)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		log.Warn().Err(err).Str("level", string(level)).Msg("telegram send failed")
	}
}

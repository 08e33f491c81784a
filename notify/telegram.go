package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Telegram sends alerts to a chat. Send failures are logged and dropped;
// notification delivery must never block or fail the trading path.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

func NewTelegram(token string, chatID int64, log zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		log:    log.With().Str("component", "telegram").Logger(),
	}, nil
}

func (t *Telegram) Notify(msg string) {
	m := tgbotapi.NewMessage(t.chatID, msg)
	m.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(m); err != nil {
		t.log.Warn().Err(err).Msg("telegram send failed")
	}
}

// Package notify delivers end-of-run summaries. Optional plumbing; a nil
// notifier simply means no notification.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/models"
)

// Telegram sends run reports to a single chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifyRun sends one summary message for a finished batch run.
func (t *Telegram) NotifyRun(report *models.RunReport) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Forecast run: %s\n", report.Tournament)
	fmt.Fprintf(&sb, "Duration: %s\n", report.Finished.Sub(report.Started).Round(1e9))
	fmt.Fprintf(&sb, "Submitted: %d, skipped: %d, failed: %d\n", report.Submitted, report.Skipped, report.Failed)
	if len(report.Failures) > 0 {
		sb.WriteString("Failures:\n")
		for _, f := range report.Failures {
			sb.WriteString("- ")
			sb.WriteString(f)
			sb.WriteString("\n")
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, sb.String())
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Msg("failed to send run summary")
		return err
	}
	return nil
}

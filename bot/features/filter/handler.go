package filter

import (
	"context"
	"fmt"
	"time"

	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleEvasion(ctx context.Context, msg *tgbotapi.Message, text, trigger string) {
	outcome, err := f.moderation.AutoMute(ctx, service.AutoMuteRequest{
		ChatID:      msg.Chat.ID,
		TelegramID:  msg.From.ID,
		DisplayName: common.DisplayName(msg.From),
		MessageID:   msg.MessageID,
		Text:        text,
		Trigger:     trigger,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"chatID":  msg.Chat.ID,
			"userID":  msg.From.ID,
			"trigger": trigger,
			"error":   err,
		}).Error("Auto-mute failed")
		f.announce(ctx, msg.Chat.ID, 0, common.GenericErrorMessage)
		return
	}

	mention := common.MentionUser(msg.From)
	switch outcome.Action {
	case service.AutoMuteApplied:
		// The offending message is gone, so announcements are not threaded
		if outcome.Warn != nil && outcome.Warn.Banned {
			f.announce(ctx, msg.Chat.ID, 0, fmt.Sprintf(
				"🔨 %s забанен за нытьё: набрано %s предупреждений.",
				mention, common.FormatWarnCount(outcome.Warn.Count, outcome.Warn.Max),
			))
			return
		}
		muted := outcome.MutedUntil.Sub(f.now()).Round(time.Minute)
		text := fmt.Sprintf("🔇 %s в муте на %s за нытьё.", mention, common.FormatDuration(muted))
		if outcome.Warn != nil {
			text += " Предупреждение " + common.FormatWarnCount(outcome.Warn.Count, outcome.Warn.Max)
		}
		f.announce(ctx, msg.Chat.ID, 0, text)
	case service.AutoMuteAdminNotified:
		f.announce(ctx, msg.Chat.ID, msg.MessageID, "Админам ныть тоже не положено 😉")
	case service.AutoMuteRestrictFailed:
		f.announce(ctx, msg.Chat.ID, 0, fmt.Sprintf("❌ Не удалось замьютить %s.", mention))
	case service.AutoMuteSkipped:
		// protected accounts stay silent
	}
}

func (f *Feature) handleFun(ctx context.Context, msg *tgbotapi.Message, text string) {
	reply := f.fun.Match(text)
	if reply == nil {
		return
	}

	replyTo := 0
	if reply.ReplyToMessage {
		replyTo = msg.MessageID
	}
	log.WithFields(log.Fields{
		"chatID":  msg.Chat.ID,
		"keyword": reply.Keyword,
	}).Debug("Fun trigger matched")

	f.announce(ctx, msg.Chat.ID, replyTo, common.Escape(reply.Text))
}

func (f *Feature) announce(ctx context.Context, chatID int64, replyTo int, text string) {
	if _, err := f.chat.Reply(ctx, chatID, replyTo, text); err != nil {
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Error("Error sending filter reply")
	}
}

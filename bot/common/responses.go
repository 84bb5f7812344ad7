package common

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Respond replies to msg in its chat
func Respond(ctx context.Context, r Replier, msg *tgbotapi.Message, text string) {
	if _, err := r.Reply(ctx, msg.Chat.ID, msg.MessageID, text); err != nil {
		log.WithFields(log.Fields{
			"chatID": msg.Chat.ID,
			"error":  err,
		}).Error("Error sending reply")
	}
}

// RespondWithError replies with an error marker
func RespondWithError(ctx context.Context, r Replier, msg *tgbotapi.Message, text string) {
	Respond(ctx, r, msg, "❌ "+text)
}

// RespondWithSuccess replies with a success marker
func RespondWithSuccess(ctx context.Context, r Replier, msg *tgbotapi.Message, text string) {
	Respond(ctx, r, msg, "✅ "+text)
}

// Acknowledge answers a button press without an alert
func Acknowledge(ctx context.Context, a CallbackAnswerer, query *tgbotapi.CallbackQuery, text string) {
	if err := a.AnswerCallback(ctx, query.ID, text, false); err != nil {
		log.WithError(err).Warn("Failed to answer callback")
	}
}

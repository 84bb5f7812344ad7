package membership

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"socialmap/bot/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// HandleNewMembers processes a join service message
func (f *Feature) HandleNewMembers(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	locked, err := f.settings.IsLockdown(ctx, chatID)
	if err != nil {
		// Unknown state falls back to the challenge
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Error("Failed to read lockdown flag")
		locked = false
	}

	for i := range msg.NewChatMembers {
		member := &msg.NewChatMembers[i]
		if member.IsBot {
			continue
		}

		if locked {
			f.kick(ctx, chatID, member)
			continue
		}
		f.challenge(ctx, msg, member)
	}
}

// kick removes the member without leaving a ban behind
func (f *Feature) kick(ctx context.Context, chatID int64, member *tgbotapi.User) {
	logger := log.WithFields(log.Fields{
		"chatID": chatID,
		"userID": member.ID,
	})

	if err := f.chat.BanMember(ctx, chatID, member.ID); err != nil {
		logger.WithError(err).Error("Failed to remove member during lockdown")
		return
	}
	if err := f.chat.UnbanMember(ctx, chatID, member.ID); err != nil {
		logger.WithError(err).Warn("Failed to lift lockdown ban")
	}
	logger.Info("Removed new member during lockdown")
}

// challenge mutes the member until they press the verify button
func (f *Feature) challenge(ctx context.Context, msg *tgbotapi.Message, member *tgbotapi.User) {
	logger := log.WithFields(log.Fields{
		"chatID": msg.Chat.ID,
		"userID": member.ID,
	})

	if err := f.chat.RestrictMember(ctx, msg.Chat.ID, member.ID, time.Time{}); err != nil {
		logger.WithError(err).Error("Failed to restrict new member")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Я не бот ✅", VerifyPrefix+strconv.FormatInt(member.ID, 10)),
		),
	)
	text := fmt.Sprintf("Привет, %s! Нажмите кнопку ниже, чтобы начать писать в чат.", common.MentionUser(member))

	if _, err := f.chat.SendKeyboard(ctx, msg.Chat.ID, msg.MessageID, text, keyboard); err != nil {
		logger.WithError(err).Error("Failed to post verify button")
	}
}

// HandleVerify lifts the join restriction when the challenged member presses the button
func (f *Feature) HandleVerify(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, VerifyPrefix), 10, 64)
	if err != nil {
		common.HandleCallbackError(ctx, f.chat, query, common.NewUserError("Кнопка устарела.", "malformed verify callback"))
		return
	}
	if query.From == nil || query.From.ID != userID {
		if err := f.chat.AnswerCallback(ctx, query.ID, "Эта кнопка не для вас.", true); err != nil {
			log.WithError(err).Warn("Failed to answer callback")
		}
		return
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	if err := f.chat.UnrestrictMember(ctx, chatID, userID); err != nil {
		common.HandleCallbackError(ctx, f.chat, query, common.NewSystemError(err, "failed to lift join restriction"))
		return
	}

	text := fmt.Sprintf("✅ %s прошёл проверку. Добро пожаловать!", common.MentionUser(query.From))
	if err := f.chat.EditText(ctx, chatID, query.Message.MessageID, text); err != nil {
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Warn("Failed to update verify message")
	}

	common.Acknowledge(ctx, f.chat, query, "Добро пожаловать!")
	log.WithFields(log.Fields{
		"chatID": chatID,
		"userID": userID,
	}).Info("New member verified")
}

package duel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"socialmap/bot/common"
	"socialmap/models"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

var errUsage = common.NewUserError("Использование: /duel <ставка>", "duel without a valid bet")

// HandleCommand posts a duel offer with an accept button
func (f *Feature) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		common.HandleError(ctx, f.chat, msg, "duel", errUsage)
		return
	}
	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "duel", errUsage)
		return
	}

	name := common.DisplayName(msg.From)
	offer, err := f.duels.Offer(ctx, msg.Chat.ID, msg.From.ID, name, bet)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "duel", err)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Принять вызов ⚔️", AcceptPrefix+offer.ID),
		),
	)
	text := fmt.Sprintf(
		"⚔️ %s вызывает на дуэль!\nСтавка: <b>%s</b> кредитов. Кто примет вызов?",
		common.MentionUser(msg.From), common.FormatCredits(offer.Bet),
	)
	if _, err := f.chat.SendKeyboard(ctx, msg.Chat.ID, msg.MessageID, text, keyboard); err != nil {
		log.WithFields(log.Fields{
			"chatID":  msg.Chat.ID,
			"offerID": offer.ID,
			"error":   err,
		}).Error("Failed to post duel offer")
	}
}

// HandleAccept resolves the duel behind a pressed accept button
func (f *Feature) HandleAccept(ctx context.Context, query *tgbotapi.CallbackQuery) {
	offerID := strings.TrimPrefix(query.Data, AcceptPrefix)

	offer, result, err := f.duels.Accept(ctx, offerID, query.From.ID)
	if err != nil {
		// The offer was consumed; the button must not linger
		if errors.Is(err, service.ErrInitiatorInsufficientFunds) && query.Message != nil {
			if editErr := f.chat.EditText(ctx, query.Message.Chat.ID, query.Message.MessageID,
				"⚔️ Дуэль отменена: у зачинщика не хватает кредитов."); editErr != nil {
				log.WithError(editErr).Warn("Failed to cancel duel offer message")
			}
		}
		common.HandleCallbackError(ctx, f.chat, query, err)
		return
	}

	if query.Message != nil {
		text := resultText(offer, result, query.From)
		if err := f.chat.EditText(ctx, query.Message.Chat.ID, query.Message.MessageID, text); err != nil {
			log.WithFields(log.Fields{
				"offerID": offerID,
				"error":   err,
			}).Error("Failed to post duel result")
		}
	}

	common.Acknowledge(ctx, f.chat, query, "Дуэль состоялась!")
}

func resultText(offer *models.DuelOffer, result *models.DuelResult, acceptor *tgbotapi.User) string {
	initiator := common.Mention(offer.InitiatorTelegramID, offer.InitiatorName)
	challenger := common.MentionUser(acceptor)

	winner, loser := initiator, challenger
	if result.WinnerTelegramID != offer.InitiatorTelegramID {
		winner, loser = challenger, initiator
	}

	return fmt.Sprintf(
		"⚔️ %s против %s\n"+
			"Ставка: %s, банк: %s, налог: %s\n\n"+
			"🏆 %s забирает <b>%s</b> (баланс: %s)\n"+
			"💀 %s теряет ставку (баланс: %s)",
		initiator, challenger,
		common.FormatCredits(result.Bet), common.FormatCredits(result.Pot), common.FormatCredits(result.Tax),
		winner, common.FormatCredits(result.Payout), common.FormatCredits(result.WinnerBalance),
		loser, common.FormatCredits(result.LoserBalance),
	)
}

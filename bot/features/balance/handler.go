package balance

import (
	"context"
	"fmt"
	"strings"

	"socialmap/bot/common"
	"socialmap/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

var transactionLabels = map[models.TransactionType]string{
	models.TransactionTypeInitial:  "стартовый капитал",
	models.TransactionTypeDuelWin:  "победа в дуэли",
	models.TransactionTypeDuelLoss: "поражение в дуэли",
}

func (f *Feature) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	user, err := f.users.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "balance", err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 %s, ваш баланс: <b>%s</b> кредитов",
		common.MentionUser(msg.From), common.FormatCredits(user.Credits))

	history, err := f.users.GetBalanceHistory(ctx, user.UID, historyLimit)
	if err != nil {
		// history is optional in the reply
		log.WithFields(log.Fields{
			"uid":   user.UID,
			"error": err,
		}).Warn("Failed to load balance history")
	}
	if len(history) > 0 {
		b.WriteString("\n\nПоследние операции:")
		for _, entry := range history {
			fmt.Fprintf(&b, "\n%s %s, %s", formatChange(entry.ChangeAmount), describe(entry.TransactionType), entry.CreatedAt.Format("02.01 15:04"))
		}
	}

	common.Respond(ctx, f.chat, msg, b.String())
}

func formatChange(amount int64) string {
	if amount >= 0 {
		return "+" + common.FormatCredits(amount)
	}
	return "−" + common.FormatCredits(-amount)
}

func describe(t models.TransactionType) string {
	if label, ok := transactionLabels[t]; ok {
		return label
	}
	return string(t)
}

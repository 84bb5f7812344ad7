package balance

import (
	"context"

	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// historyLimit is how many credit changes /balance lists
const historyLimit = 5

var Commands = []tgbotapi.BotCommand{
	{Command: "balance", Description: "Баланс кредитов и последние операции"},
}

type Feature struct {
	chat  common.Replier
	users service.UserService
}

func New(chat common.Replier, users service.UserService) *Feature {
	return &Feature{
		chat:  chat,
		users: users,
	}
}

func (f *Feature) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	f.handleBalance(ctx, msg)
}

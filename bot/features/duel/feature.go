package duel

import (
	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AcceptPrefix marks the callback data of a duel's accept button
const AcceptPrefix = "duel:"

var Commands = []tgbotapi.BotCommand{
	{Command: "duel", Description: "Дуэль на кредиты: /duel <ставка>"},
}

type Feature struct {
	chat  common.Chat
	duels service.DuelService
}

func New(chat common.Chat, duels service.DuelService) *Feature {
	return &Feature{
		chat:  chat,
		duels: duels,
	}
}

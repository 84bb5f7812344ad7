package general

import (
	"context"

	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands open to every member
var Commands = []tgbotapi.BotCommand{
	{Command: "stats", Description: "Статистика сообщества"},
	{Command: "help", Description: "Список команд"},
	{Command: "ping", Description: "Проверить, что бот жив"},
	{Command: "version", Description: "Версия бота"},
	{Command: "link", Description: "Привязать профиль: /link <код>"},
}

// Config carries what /help and /version print
type Config struct {
	Version    string
	IsAdmin    func(telegramID int64) bool
	PublicHelp []tgbotapi.BotCommand
	AdminHelp  []tgbotapi.BotCommand
}

type Feature struct {
	chat   common.Chat
	stats  service.StatsService
	links  service.LinkService
	config Config
}

func New(chat common.Chat, stats service.StatsService, links service.LinkService, config Config) *Feature {
	return &Feature{
		chat:   chat,
		stats:  stats,
		links:  links,
		config: config,
	}
}

// Handles reports whether command belongs to this feature
func (f *Feature) Handles(command string) bool {
	for _, c := range Commands {
		if c.Command == command {
			return true
		}
	}
	return command == "start"
}

func (f *Feature) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "stats":
		f.handleStats(ctx, msg)
	case "help", "start":
		f.handleHelp(ctx, msg)
	case "ping":
		common.Respond(ctx, f.chat, msg, "🏓 Понг!")
	case "version":
		common.Respond(ctx, f.chat, msg, "Версия: <code>"+common.Escape(f.config.Version)+"</code>")
	case "link":
		f.handleLink(ctx, msg)
	}
}

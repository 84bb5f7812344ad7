package moderation

import (
	"context"
	"time"

	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// whiningListLimit is how many attempts /whining shows
const whiningListLimit = 10

// Commands handled by this feature. All of them require the configured admin set.
var Commands = []tgbotapi.BotCommand{
	{Command: "warn", Description: "Предупредить участника (ответом)"},
	{Command: "unwarn", Description: "Снять предупреждение"},
	{Command: "mute", Description: "Замьютить: /mute 30m"},
	{Command: "unmute", Description: "Снять мьют"},
	{Command: "ban", Description: "Забанить участника (ответом)"},
	{Command: "unban", Description: "Разбанить: /unban <id>"},
	{Command: "lockdown", Description: "Локдаун: /lockdown on|off"},
	{Command: "whining", Description: "Последние попытки нытья"},
}

type Feature struct {
	chat       common.Chat
	moderation service.ModerationService
	settings   service.ChatSettingsService
	isAdmin    func(telegramID int64) bool
	now        func() time.Time
}

func New(chat common.Chat, moderation service.ModerationService, settings service.ChatSettingsService, isAdmin func(int64) bool) *Feature {
	return &Feature{
		chat:       chat,
		moderation: moderation,
		settings:   settings,
		isAdmin:    isAdmin,
		now:        time.Now,
	}
}

// Handles reports whether command belongs to this feature
func (f *Feature) Handles(command string) bool {
	for _, c := range Commands {
		if c.Command == command {
			return true
		}
	}
	return false
}

// HandleCommand runs an admin command. Non-admins are ignored without a reply.
func (f *Feature) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !f.isAdmin(msg.From.ID) {
		log.WithFields(log.Fields{
			"chatID":  msg.Chat.ID,
			"command": msg.Command(),
		}).Debug("Ignoring admin command from non-admin")
		return
	}

	switch msg.Command() {
	case "warn":
		f.handleWarn(ctx, msg)
	case "unwarn":
		f.handleUnwarn(ctx, msg)
	case "mute":
		f.handleMute(ctx, msg)
	case "unmute":
		f.handleUnmute(ctx, msg)
	case "ban":
		f.handleBan(ctx, msg)
	case "unban":
		f.handleUnban(ctx, msg)
	case "lockdown":
		f.handleLockdown(ctx, msg)
	case "whining":
		f.handleWhining(ctx, msg)
	}
}

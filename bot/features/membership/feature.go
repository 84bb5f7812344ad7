package membership

import (
	"socialmap/bot/common"
	"socialmap/service"
)

// VerifyPrefix marks the callback data of the join challenge button
const VerifyPrefix = "verify:"

// Feature challenges new members, or removes them while the chat is locked down
type Feature struct {
	chat     common.Chat
	settings service.ChatSettingsService
}

func New(chat common.Chat, settings service.ChatSettingsService) *Feature {
	return &Feature{
		chat:     chat,
		settings: settings,
	}
}

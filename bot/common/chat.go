package common

import (
	"context"

	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Replier posts and edits HTML-formatted messages
type Replier interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	SendKeyboard(ctx context.Context, chatID int64, replyTo int, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
}

// CallbackAnswerer acknowledges inline button presses
type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// MemberCounter reports how many members a chat has
type MemberCounter interface {
	MemberCount(ctx context.Context, chatID int64) (int, error)
}

// Chat is everything a feature may do to a chat
type Chat interface {
	Replier
	CallbackAnswerer
	MemberCounter
	service.MessageDeleter
	service.MemberRestrictor
	service.MemberBanner
	service.AdminChecker
}

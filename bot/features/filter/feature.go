package filter

import (
	"context"
	"time"

	"socialmap/bot/common"
	"socialmap/service"
	"socialmap/triggers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Feature screens every plain message: evasion phrases go to the moderation
// state machine, everything else may earn a fun reply.
type Feature struct {
	chat       common.Chat
	moderation service.ModerationService
	evasion    *triggers.EvasionMatcher
	fun        *triggers.FunMatcher
	now        func() time.Time
}

func New(chat common.Chat, moderation service.ModerationService, evasion *triggers.EvasionMatcher, fun *triggers.FunMatcher) *Feature {
	return &Feature{
		chat:       chat,
		moderation: moderation,
		evasion:    evasion,
		fun:        fun,
		now:        time.Now,
	}
}

// HandleMessage screens a non-command message
func (f *Feature) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}

	if match := f.evasion.Detect(text); match.Matched {
		f.handleEvasion(ctx, msg, text, match.Trigger)
		return
	}

	f.handleFun(ctx, msg, text)
}

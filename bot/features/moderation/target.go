package moderation

import (
	"strconv"
	"strings"

	"socialmap/bot/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// target is the member an admin command acts on
type target struct {
	ID   int64
	Name string
}

func (t target) mention() string {
	return common.Mention(t.ID, t.Name)
}

var errNoReplyTarget = common.NewUserError(
	"Ответьте этой командой на сообщение участника.",
	"admin command without reply target",
)

var errNoTarget = common.NewUserError(
	"Ответьте на сообщение участника или укажите его id.",
	"admin command without reply target or id",
)

// replyTarget returns the author of the message the command replies to
func replyTarget(msg *tgbotapi.Message) (target, error) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		return target{}, errNoReplyTarget
	}
	from := msg.ReplyToMessage.From
	return target{ID: from.ID, Name: common.DisplayName(from)}, nil
}

// idOrReplyTarget prefers an explicit numeric id argument over the reply target
func idOrReplyTarget(msg *tgbotapi.Message) (target, error) {
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		id, err := strconv.ParseInt(strings.Fields(arg)[0], 10, 64)
		if err != nil || id <= 0 {
			return target{}, errNoTarget
		}
		return target{ID: id, Name: strconv.FormatInt(id, 10)}, nil
	}
	if t, err := replyTarget(msg); err == nil {
		return t, nil
	}
	return target{}, errNoTarget
}

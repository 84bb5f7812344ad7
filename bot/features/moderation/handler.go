package moderation

import (
	"context"
	"fmt"
	"strings"

	"socialmap/bot/common"
	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ensureNotImmune rejects admins, configured immune accounts and the bot itself
func (f *Feature) ensureNotImmune(ctx context.Context, chatID int64, t target) error {
	immunity, err := f.moderation.CheckImmunity(ctx, chatID, t.ID)
	if err != nil {
		return err
	}
	if immunity != service.ImmunityNone {
		return service.ErrImmuneTarget
	}
	return nil
}

func (f *Feature) handleWarn(ctx context.Context, msg *tgbotapi.Message) {
	t, err := replyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "warn", err)
		return
	}
	if err := f.ensureNotImmune(ctx, msg.Chat.ID, t); err != nil {
		common.HandleError(ctx, f.chat, msg, "warn", err)
		return
	}

	reason := strings.TrimSpace(msg.CommandArguments())
	if reason == "" {
		reason = "без причины"
	}

	outcome, err := f.moderation.Warn(ctx, service.WarnRequest{
		ChatID:      msg.Chat.ID,
		TelegramID:  t.ID,
		DisplayName: t.Name,
		Reason:      reason,
	})
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "warn", err)
		return
	}

	if outcome.Banned {
		common.Respond(ctx, f.chat, msg, fmt.Sprintf(
			"🔨 %s получает бан: набрано %s предупреждений.",
			t.mention(), common.FormatWarnCount(outcome.Count, outcome.Max),
		))
		return
	}
	common.Respond(ctx, f.chat, msg, fmt.Sprintf(
		"⚠️ %s получает предупреждение %s\nПричина: %s",
		t.mention(), common.FormatWarnCount(outcome.Count, outcome.Max), common.Escape(reason),
	))
}

func (f *Feature) handleUnwarn(ctx context.Context, msg *tgbotapi.Message) {
	t, err := idOrReplyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "unwarn", err)
		return
	}

	outcome, err := f.moderation.Unwarn(ctx, t.ID)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "unwarn", err)
		return
	}

	if outcome.Cleared {
		common.RespondWithSuccess(ctx, f.chat, msg, fmt.Sprintf("С %s сняты все предупреждения.", t.mention()))
		return
	}
	common.RespondWithSuccess(ctx, f.chat, msg, fmt.Sprintf(
		"Предупреждение снято с %s %s",
		t.mention(), common.FormatWarnCount(outcome.Count, outcome.Max),
	))
}

func (f *Feature) handleMute(ctx context.Context, msg *tgbotapi.Message) {
	t, err := replyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "mute", err)
		return
	}

	duration, err := common.ParseMuteDuration(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "mute", common.NewUserError(
			"Укажите срок: 45s, 30m, 5h или 2d.",
			err.Error(),
		))
		return
	}

	if err := f.ensureNotImmune(ctx, msg.Chat.ID, t); err != nil {
		common.HandleError(ctx, f.chat, msg, "mute", err)
		return
	}

	until := f.now().Add(duration)
	if err := f.chat.RestrictMember(ctx, msg.Chat.ID, t.ID, until); err != nil {
		common.HandleError(ctx, f.chat, msg, "mute", common.NewSystemError(err, "failed to restrict member"))
		return
	}

	common.Respond(ctx, f.chat, msg, fmt.Sprintf("🔇 %s в муте на %s.", t.mention(), common.FormatDuration(duration)))
}

func (f *Feature) handleUnmute(ctx context.Context, msg *tgbotapi.Message) {
	t, err := idOrReplyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "unmute", err)
		return
	}

	if err := f.chat.UnrestrictMember(ctx, msg.Chat.ID, t.ID); err != nil {
		common.HandleError(ctx, f.chat, msg, "unmute", common.NewSystemError(err, "failed to unrestrict member"))
		return
	}

	common.Respond(ctx, f.chat, msg, fmt.Sprintf("🔊 %s снова может писать.", t.mention()))
}

func (f *Feature) handleBan(ctx context.Context, msg *tgbotapi.Message) {
	t, err := replyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "ban", err)
		return
	}
	if err := f.ensureNotImmune(ctx, msg.Chat.ID, t); err != nil {
		common.HandleError(ctx, f.chat, msg, "ban", err)
		return
	}

	if err := f.chat.BanMember(ctx, msg.Chat.ID, t.ID); err != nil {
		common.HandleError(ctx, f.chat, msg, "ban", common.NewSystemError(err, "failed to ban member"))
		return
	}

	common.Respond(ctx, f.chat, msg, fmt.Sprintf("🔨 %s забанен.", t.mention()))
}

func (f *Feature) handleUnban(ctx context.Context, msg *tgbotapi.Message) {
	t, err := idOrReplyTarget(msg)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "unban", err)
		return
	}

	if err := f.chat.UnbanMember(ctx, msg.Chat.ID, t.ID); err != nil {
		common.HandleError(ctx, f.chat, msg, "unban", common.NewSystemError(err, "failed to unban member"))
		return
	}

	common.RespondWithSuccess(ctx, f.chat, msg, fmt.Sprintf("Пользователь %d разбанен.", t.ID))
}

func (f *Feature) handleLockdown(ctx context.Context, msg *tgbotapi.Message) {
	var enable bool
	switch strings.ToLower(strings.TrimSpace(msg.CommandArguments())) {
	case "on", "вкл":
		enable = true
	case "off", "выкл":
		enable = false
	case "":
		locked, err := f.settings.IsLockdown(ctx, msg.Chat.ID)
		if err != nil {
			common.HandleError(ctx, f.chat, msg, "lockdown", err)
			return
		}
		state := "выключен"
		if locked {
			state = "включён"
		}
		common.Respond(ctx, f.chat, msg, "Локдаун сейчас "+state+".")
		return
	default:
		common.HandleError(ctx, f.chat, msg, "lockdown", common.NewUserError(
			"Использование: /lockdown on|off",
			"unknown lockdown argument",
		))
		return
	}

	if err := f.settings.SetLockdown(ctx, msg.Chat.ID, enable); err != nil {
		common.HandleError(ctx, f.chat, msg, "lockdown", err)
		return
	}

	log.WithFields(log.Fields{
		"chatID":   msg.Chat.ID,
		"adminID":  msg.From.ID,
		"lockdown": enable,
	}).Info("Lockdown toggled")

	if enable {
		common.Respond(ctx, f.chat, msg, "🔒 Локдаун включён: новые участники будут удаляться.")
	} else {
		common.Respond(ctx, f.chat, msg, "🔓 Локдаун выключен.")
	}
}

func (f *Feature) handleWhining(ctx context.Context, msg *tgbotapi.Message) {
	attempts, err := f.moderation.RecentWhining(ctx, whiningListLimit)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "whining", err)
		return
	}
	if len(attempts) == 0 {
		common.Respond(ctx, f.chat, msg, "Попыток нытья пока не было.")
		return
	}

	var b strings.Builder
	b.WriteString("<b>Последние попытки нытья</b>\n")
	for i, a := range attempts {
		fmt.Fprintf(&b, "%d. %s, %s: «%s» (%s)\n",
			i+1,
			common.Mention(a.TelegramID, a.DisplayName),
			common.Escape(a.Trigger),
			common.Escape(a.OriginalText),
			a.CreatedAt.Format("02.01 15:04"),
		)
	}
	common.Respond(ctx, f.chat, msg, strings.TrimRight(b.String(), "\n"))
}

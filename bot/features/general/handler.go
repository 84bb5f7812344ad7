package general

import (
	"context"
	"fmt"
	"strings"

	"socialmap/bot/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := f.stats.GetEconomyStats(ctx)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "stats", err)
		return
	}

	members := "?"
	if count, err := f.chat.MemberCount(ctx, msg.Chat.ID); err != nil {
		log.WithFields(log.Fields{
			"chatID": msg.Chat.ID,
			"error":  err,
		}).Warn("Failed to count chat members")
	} else {
		members = common.FormatCredits(int64(count))
	}

	var b strings.Builder
	b.WriteString("📊 <b>Статистика</b>\n")
	fmt.Fprintf(&b, "Участников в чате: %s\n", members)
	fmt.Fprintf(&b, "Привязанных профилей: %s\n", common.FormatCredits(stats.LinkedUsers))
	fmt.Fprintf(&b, "Меток на карте: %s\n", common.FormatCredits(stats.Pins))
	fmt.Fprintf(&b, "Кредитов в обороте: %s\n", common.FormatCredits(stats.TotalCredits))
	fmt.Fprintf(&b, "Дуэлей сыграно: %s\n", common.FormatCredits(stats.DuelsPlayed))
	fmt.Fprintf(&b, "Сгорело в налогах: %s\n", common.FormatCredits(stats.CreditsBurned))
	fmt.Fprintf(&b, "Активных предупреждений: %s", common.FormatCredits(stats.ActiveWarns))

	common.Respond(ctx, f.chat, msg, b.String())
}

func (f *Feature) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	var b strings.Builder
	b.WriteString("<b>Команды</b>\n")
	writeCommands(&b, f.config.PublicHelp)

	if msg.From != nil && f.config.IsAdmin != nil && f.config.IsAdmin(msg.From.ID) {
		b.WriteString("\n<b>Для админов</b>\n")
		writeCommands(&b, f.config.AdminHelp)
	}

	common.Respond(ctx, f.chat, msg, strings.TrimRight(b.String(), "\n"))
}

func writeCommands(b *strings.Builder, commands []tgbotapi.BotCommand) {
	for _, c := range commands {
		fmt.Fprintf(b, "/%s: %s\n", c.Command, common.Escape(c.Description))
	}
}

func (f *Feature) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		common.HandleError(ctx, f.chat, msg, "link", common.NewUserError(
			"Использование: /link <код>. Код выдаётся в профиле на сайте.",
			"link without code",
		))
		return
	}

	user, err := f.links.Link(ctx, code, msg.From.ID)
	if err != nil {
		common.HandleError(ctx, f.chat, msg, "link", err)
		return
	}

	log.WithFields(log.Fields{
		"uid":        user.UID,
		"telegramID": msg.From.ID,
	}).Info("Chat account linked via bot")

	common.RespondWithSuccess(ctx, f.chat, msg, fmt.Sprintf(
		"Профиль <b>%s</b> привязан. Баланс: %s кредитов.",
		common.Escape(user.DisplayName), common.FormatCredits(user.Credits),
	))
}

package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// TelegramChat implements common.Chat on top of the Bot API
type TelegramChat struct {
	api *tgbotapi.BotAPI
}

// NewTelegramChat wraps an authenticated Bot API client
func NewTelegramChat(api *tgbotapi.BotAPI) *TelegramChat {
	return &TelegramChat{api: api}
}

// Reply sends an HTML message, threaded under replyTo when it is non-zero
func (c *TelegramChat) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true
	msg.DisableWebPagePreview = true

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendKeyboard sends an HTML message with inline buttons
func (c *TelegramChat) SendKeyboard(ctx context.Context, chatID int64, replyTo int, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true
	msg.ReplyMarkup = keyboard

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send keyboard to %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// EditText replaces a message's text and drops its buttons
func (c *TelegramChat) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := c.api.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", messageID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press
func (c *TelegramChat) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// MemberCount returns the number of members in a chat
func (c *TelegramChat) MemberCount(ctx context.Context, chatID int64) (int, error) {
	count, err := c.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count members of %d: %w", chatID, err)
	}
	return count, nil
}

// DeleteMessage removes a message
func (c *TelegramChat) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

// RestrictMember takes away every send permission until the given time. A zero
// time restricts until an admin lifts it.
func (c *TelegramChat) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		Permissions:      &tgbotapi.ChatPermissions{},
	}
	if !until.IsZero() {
		cfg.UntilDate = until.Unix()
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to restrict %d: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"chatID": chatID,
		"userID": userID,
		"until":  until,
	}).Info("Member restricted")
	return nil
}

// UnrestrictMember restores the default member permissions
func (c *TelegramChat) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       true,
			CanSendMediaMessages:  true,
			CanSendPolls:          true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
			CanInviteUsers:        true,
		},
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to unrestrict %d: %w", userID, err)
	}
	return nil
}

// BanMember removes a member permanently
func (c *TelegramChat) BanMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to ban %d: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"chatID": chatID,
		"userID": userID,
	}).Info("Member banned")
	return nil
}

// UnbanMember lifts a ban; members that are not banned are left alone
func (c *TelegramChat) UnbanMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     true,
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to unban %d: %w", userID, err)
	}
	return nil
}

// IsChatAdmin reports whether the member is the creator or an administrator
func (c *TelegramChat) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member %d: %w", userID, err)
	}
	return member.IsCreator() || member.IsAdministrator(), nil
}

// SetCommands publishes the command list shown in the client's menu
func (c *TelegramChat) SetCommands(ctx context.Context, commands []tgbotapi.BotCommand) error {
	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

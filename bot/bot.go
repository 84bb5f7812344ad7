package bot

import (
	"context"
	"runtime/debug"
	"strings"
	"sync"

	"socialmap/bot/common"
	"socialmap/bot/features/balance"
	"socialmap/bot/features/duel"
	"socialmap/bot/features/filter"
	"socialmap/bot/features/general"
	"socialmap/bot/features/membership"
	"socialmap/bot/features/moderation"
	"socialmap/service"
	"socialmap/triggers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Username string // bot username, used to drop commands addressed to other bots
	ChatID   int64  // community chat; 0 accepts every group
	Version  string
	IsAdmin  func(telegramID int64) bool
}

// Services are the domain services the bot drives
type Services struct {
	Users      service.UserService
	Moderation service.ModerationService
	Duels      service.DuelService
	Links      service.LinkService
	Settings   service.ChatSettingsService
	Stats      service.StatsService
}

// Triggers are the phrase matchers applied to plain messages
type Triggers struct {
	Evasion *triggers.EvasionMatcher
	Fun     *triggers.FunMatcher
}

type Bot struct {
	config Config
	chat   common.Chat

	general    *general.Feature
	balance    *balance.Feature
	duel       *duel.Feature
	moderation *moderation.Feature
	filter     *filter.Feature
	membership *membership.Feature

	wg sync.WaitGroup
}

// PublicCommands lists the commands every member may use
func PublicCommands() []tgbotapi.BotCommand {
	commands := append([]tgbotapi.BotCommand{}, general.Commands...)
	commands = append(commands, balance.Commands...)
	return append(commands, duel.Commands...)
}

func New(config Config, chat common.Chat, services Services, matchers Triggers) *Bot {
	return &Bot{
		config: config,
		chat:   chat,
		general: general.New(chat, services.Stats, services.Links, general.Config{
			Version:    config.Version,
			IsAdmin:    config.IsAdmin,
			PublicHelp: PublicCommands(),
			AdminHelp:  moderation.Commands,
		}),
		balance:    balance.New(chat, services.Users),
		duel:       duel.New(chat, services.Duels),
		moderation: moderation.New(chat, services.Moderation, services.Settings, config.IsAdmin),
		filter:     filter.New(chat, services.Moderation, matchers.Evasion, matchers.Fun),
		membership: membership.New(chat, services.Settings),
	}
}

// CommandSetter publishes the command menu
type CommandSetter interface {
	SetCommands(ctx context.Context, commands []tgbotapi.BotCommand) error
}

// RegisterCommands publishes the public commands; admin commands stay out of the menu
func (b *Bot) RegisterCommands(ctx context.Context, setter CommandSetter) error {
	return setter.SetCommands(ctx, PublicCommands())
}

// Run processes updates until ctx is cancelled or the channel closes. Each update
// is handled on its own goroutine; Run waits for in-flight updates before returning.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(ctx, update)
		}
	}
}

// Dispatch handles one update asynchronously
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.HandleUpdate(ctx, update)
	}()
}

// Wait blocks until every dispatched update has been handled
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate routes a single update. A panic in any handler is logged and
// answered with the generic fault message; it never escapes.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer b.recoverUpdate(ctx, update)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.EditedMessage != nil:
		// edited messages are screened like new ones
		if b.acceptsChat(update.EditedMessage.Chat) && !update.EditedMessage.IsCommand() {
			b.filter.HandleMessage(ctx, update.EditedMessage)
		}
	}
}

func (b *Bot) recoverUpdate(ctx context.Context, update tgbotapi.Update) {
	r := recover()
	if r == nil {
		return
	}

	log.WithFields(log.Fields{
		"updateID": update.UpdateID,
		"panic":    r,
		"stack":    string(debug.Stack()),
	}).Error("Recovered from panic while handling update")

	switch {
	case update.CallbackQuery != nil:
		if err := b.chat.AnswerCallback(ctx, update.CallbackQuery.ID, common.GenericErrorMessage, true); err != nil {
			log.WithError(err).Warn("Failed to answer callback after panic")
		}
	case update.Message != nil && update.Message.Chat != nil:
		common.RespondWithError(ctx, b.chat, update.Message, common.GenericErrorMessage)
	}
}

func (b *Bot) acceptsChat(chat *tgbotapi.Chat) bool {
	if chat == nil {
		return false
	}
	return b.config.ChatID == 0 || chat.ID == b.config.ChatID || chat.IsPrivate()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.acceptsChat(msg.Chat) {
		log.WithField("chatID", msg.Chat.ID).Debug("Ignoring update from foreign chat")
		return
	}

	if len(msg.NewChatMembers) > 0 {
		b.membership.HandleNewMembers(ctx, msg)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.filter.HandleMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if _, target, found := strings.Cut(msg.CommandWithAt(), "@"); found && !strings.EqualFold(target, b.config.Username) {
		return
	}
	if msg.From == nil {
		return
	}

	command := msg.Command()
	switch {
	case b.general.Handles(command):
		b.general.HandleCommand(ctx, msg)
	case command == "balance":
		b.balance.HandleCommand(ctx, msg)
	case command == "duel":
		b.duel.HandleCommand(ctx, msg)
	case b.moderation.Handles(command):
		b.moderation.HandleCommand(ctx, msg)
	default:
		log.WithFields(log.Fields{
			"chatID":  msg.Chat.ID,
			"command": command,
		}).Debug("Unknown command")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	if query.Message != nil && !b.acceptsChat(query.Message.Chat) {
		return
	}

	switch {
	case strings.HasPrefix(query.Data, duel.AcceptPrefix):
		b.duel.HandleAccept(ctx, query)
	case strings.HasPrefix(query.Data, membership.VerifyPrefix):
		b.membership.HandleVerify(ctx, query)
	default:
		common.Acknowledge(ctx, b.chat, query, "")
	}
}

package common

import (
	"context"
	"errors"
	"fmt"

	"socialmap/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// GenericErrorMessage is shown for every failure we cannot explain to the user
const GenericErrorMessage = "Системная ошибка. Попробуйте позже."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown in chat
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
	Context     any    // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (database, chat api, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: GenericErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
	}
}

// serviceErrorMessages maps domain errors to what the user is told
var serviceErrorMessages = []struct {
	err     error
	message string
}{
	{service.ErrBetOutOfRange, "Ставка вне допустимого диапазона."},
	{service.ErrSelfDuel, "Нельзя вызвать на дуэль самого себя."},
	{service.ErrInvalidLinkCode, "Код недействителен или истёк. Получите новый на сайте."},
	{service.ErrImmuneTarget, "Этого участника нельзя наказать."},
	{service.ErrNoActiveWarns, "У пользователя нет активных предупреждений."},
	{service.ErrAccountNotLinked, "Аккаунт не привязан. Получите код на сайте и отправьте /link <код>."},
	{service.ErrAccountNotFound, "Аккаунт не найден."},
	{service.ErrDuelOfferNotFound, "Вызов устарел или уже принят."},
	{service.ErrInitiatorInsufficientFunds, "У зачинщика дуэли не хватает кредитов."},
	{service.ErrAcceptorInsufficientFunds, "Не хватает кредитов, чтобы принять вызов."},
	{service.ErrAlreadyLinked, "Этот Telegram-аккаунт уже привязан к другому профилю."},
}

// UserMessage returns the chat text for err, falling back to the generic fault message
func UserMessage(err error) (string, bool) {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.UserMessage, botErr.Err == nil
	}
	for _, m := range serviceErrorMessages {
		if errors.Is(err, m.err) {
			return m.message, true
		}
	}
	return GenericErrorMessage, false
}

// HandleError logs err and replies to the message that caused it. Expected errors
// are logged at info level; everything else is a system fault.
func HandleError(ctx context.Context, r Replier, msg *tgbotapi.Message, command string, err error) {
	text, expected := UserMessage(err)

	fields := log.Fields{
		"chatID":  msg.Chat.ID,
		"command": command,
		"error":   err.Error(),
	}
	if msg.From != nil {
		fields["userID"] = msg.From.ID
	}
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.Context != nil {
		fields["context"] = botErr.Context
	}

	if expected {
		log.WithFields(fields).Info("Command rejected")
	} else {
		log.WithFields(fields).Error("Command failed")
	}

	RespondWithError(ctx, r, msg, text)
}

// HandleCallbackError answers a button press with the error as an alert
func HandleCallbackError(ctx context.Context, a CallbackAnswerer, query *tgbotapi.CallbackQuery, err error) {
	text, expected := UserMessage(err)

	entry := log.WithFields(log.Fields{
		"userID": query.From.ID,
		"data":   query.Data,
		"error":  err.Error(),
	})
	if expected {
		entry.Info("Callback rejected")
	} else {
		entry.Error("Callback failed")
	}

	if answerErr := a.AnswerCallback(ctx, query.ID, text, true); answerErr != nil {
		log.WithError(answerErr).Warn("Failed to answer callback")
	}
}

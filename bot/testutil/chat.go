package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Test chat and user IDs
const (
	ChatID   = int64(-1001234567890)
	AdminID  = int64(999999)
	UserID   = int64(111111)
	OtherID  = int64(222222)
	BotID    = int64(424242)
	ImmuneID = int64(777000)
)

// SentMessage is a message the fake chat was asked to post
type SentMessage struct {
	ChatID   int64
	ReplyTo  int
	Text     string
	Keyboard *tgbotapi.InlineKeyboardMarkup
}

// CallbackAnswer is a recorded callback acknowledgement
type CallbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

// Restriction is a recorded restrict call
type Restriction struct {
	UserID int64
	Until  time.Time
}

// FakeChat records every chat call. Error fields make the matching call fail.
type FakeChat struct {
	mu sync.Mutex

	Admins      map[int64]bool
	Members     int
	BanErr      error
	RestrictErr error
	DeleteErr   error
	SendErr     error

	Sent         []SentMessage
	Edits        []SentMessage
	Answers      []CallbackAnswer
	Deleted      []int
	Restrictions []Restriction
	Unrestricted []int64
	Banned       []int64
	Unbanned     []int64

	nextMessageID int
}

// NewFakeChat creates a fake chat where AdminID administers the chat
func NewFakeChat() *FakeChat {
	return &FakeChat{
		Admins:        map[int64]bool{AdminID: true},
		Members:       42,
		nextMessageID: 1000,
	}
}

func (f *FakeChat) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return 0, f.SendErr
	}
	f.nextMessageID++
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return f.nextMessageID, nil
}

func (f *FakeChat) SendKeyboard(ctx context.Context, chatID int64, replyTo int, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return 0, f.SendErr
	}
	f.nextMessageID++
	kb := keyboard
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, ReplyTo: replyTo, Text: text, Keyboard: &kb})
	return f.nextMessageID, nil
}

func (f *FakeChat) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Edits = append(f.Edits, SentMessage{ChatID: chatID, ReplyTo: messageID, Text: text})
	return nil
}

func (f *FakeChat) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, CallbackAnswer{ID: callbackID, Text: text, Alert: alert})
	return nil
}

func (f *FakeChat) MemberCount(ctx context.Context, chatID int64) (int, error) {
	return f.Members, nil
}

func (f *FakeChat) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *FakeChat) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RestrictErr != nil {
		return f.RestrictErr
	}
	f.Restrictions = append(f.Restrictions, Restriction{UserID: userID, Until: until})
	return nil
}

func (f *FakeChat) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unrestricted = append(f.Unrestricted, userID)
	return nil
}

func (f *FakeChat) BanMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BanErr != nil {
		return f.BanErr
	}
	f.Banned = append(f.Banned, userID)
	return nil
}

func (f *FakeChat) UnbanMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unbanned = append(f.Unbanned, userID)
	return nil
}

func (f *FakeChat) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Admins[userID], nil
}

// LastText returns the text of the most recent message, or "" when nothing was sent
func (f *FakeChat) LastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return ""
	}
	return f.Sent[len(f.Sent)-1].Text
}

// User builds a chat user
func User(id int64, firstName string) *tgbotapi.User {
	return &tgbotapi.User{ID: id, FirstName: firstName}
}

// TextMessage builds a plain group message
func TextMessage(from *tgbotapi.User, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 500,
		From:      from,
		Chat:      &tgbotapi.Chat{ID: ChatID, Type: "supergroup"},
		Text:      text,
	}
}

// CommandMessage builds a message whose leading word is a bot command entity
func CommandMessage(from *tgbotapi.User, text string) *tgbotapi.Message {
	msg := TextMessage(from, text)
	command, _, _ := strings.Cut(text, " ")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}

// ReplyTo threads msg under a message sent by target
func ReplyTo(msg *tgbotapi.Message, target *tgbotapi.User) *tgbotapi.Message {
	msg.ReplyToMessage = TextMessage(target, "original")
	msg.ReplyToMessage.MessageID = 499
	return msg
}

// Callback builds a button press on a bot message
func Callback(from *tgbotapi.User, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: from,
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 777,
			Chat:      &tgbotapi.Chat{ID: ChatID, Type: "supergroup"},
		},
	}
}

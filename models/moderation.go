package models

import (
	"time"
)

// ModerationRecord tracks active warnings for one chat user.
// WarnCount stays within [1, MaxWarns); the row is removed on ban or when
// the last warning is lifted.
type ModerationRecord struct {
	TelegramID  int64     `db:"telegram_id"`
	WarnCount   int       `db:"warn_count"`
	LastWarnAt  time.Time `db:"last_warn_at"`
	DisplayName string    `db:"display_name"`
	LastReason  string    `db:"last_reason"`
}

// WhiningAttempt is an append-only audit entry for a message caught by the evasion matcher
type WhiningAttempt struct {
	ID           int64     `db:"id"`
	TelegramID   int64     `db:"telegram_id"`
	DisplayName  string    `db:"display_name"`
	Trigger      string    `db:"trigger"`
	OriginalText string    `db:"original_text"`
	CreatedAt    time.Time `db:"created_at"`
}

// MaxWhiningTextLength caps the stored message prefix
const MaxWhiningTextLength = 100

// TruncateText returns at most MaxWhiningTextLength runes of text
func TruncateText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxWhiningTextLength {
		return text
	}
	return string(runes[:MaxWhiningTextLength])
}

// ChatSettings holds per-community flags
type ChatSettings struct {
	ChatID    int64     `db:"chat_id"`
	Lockdown  bool      `db:"lockdown"`
	UpdatedAt time.Time `db:"updated_at"`
}

package models

import (
	"time"
)

// User is a web profile. Credits is the duel economy account; an account is
// linked to chat once TelegramID is set.
type User struct {
	UID         string    `db:"uid"`
	DisplayName string    `db:"display_name"`
	AvatarURL   string    `db:"avatar_url"`
	Credits     int64     `db:"credits"`
	TelegramID  *int64    `db:"telegram_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// IsLinked reports whether the profile is bound to a chat account
func (u *User) IsLinked() bool {
	return u != nil && u.TelegramID != nil
}

// LinkCode is a short-lived code a signed-in web user hands to the bot via /link
type LinkCode struct {
	UID       string
	Code      string
	ExpiresAt time.Time
}

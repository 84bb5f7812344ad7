package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FormatCredits formats a credit amount with thousand separators
func FormatCredits(credits int64) string {
	if credits < 0 {
		return "-" + FormatCredits(-credits)
	}

	str := fmt.Sprintf("%d", credits)
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(' ')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// DisplayName returns the name we show for a chat user
func DisplayName(user *tgbotapi.User) string {
	if user == nil {
		return "Unknown"
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.UserName
	}
	if name == "" {
		name = fmt.Sprintf("id%d", user.ID)
	}
	return name
}

// Mention returns an HTML mention that works without a public username
func Mention(userID int64, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

// MentionUser is Mention for a chat user
func MentionUser(user *tgbotapi.User) string {
	return Mention(user.ID, DisplayName(user))
}

// Escape makes arbitrary text safe for HTML parse mode
func Escape(text string) string {
	return html.EscapeString(text)
}

// FormatDuration renders a mute length the way it was typed
func FormatDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%d д", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d ч", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d мин", d/time.Minute)
	default:
		return fmt.Sprintf("%d сек", d/time.Second)
	}
}

// FormatWarnCount renders the [n/max] counter
func FormatWarnCount(count, maxWarns int) string {
	return fmt.Sprintf("[%d/%d]", count, maxWarns)
}

package models

import (
	"time"
)

// DuelOffer is a pending challenge waiting for someone to press accept
type DuelOffer struct {
	ID                  string    `json:"id"`
	ChatID              int64     `json:"chat_id"`
	InitiatorTelegramID int64     `json:"initiator_telegram_id"`
	InitiatorName       string    `json:"initiator_name"`
	Bet                 int64     `json:"bet"`
	CreatedAt           time.Time `json:"created_at"`
}

// Duel is the persisted outcome of a resolved duel
type Duel struct {
	ID                  int64     `db:"id"`
	ChatID              int64     `db:"chat_id"`
	InitiatorTelegramID int64     `db:"initiator_telegram_id"`
	AcceptorTelegramID  int64     `db:"acceptor_telegram_id"`
	WinnerTelegramID    int64     `db:"winner_telegram_id"`
	Bet                 int64     `db:"bet"`
	Tax                 int64     `db:"tax"`
	CreatedAt           time.Time `db:"created_at"`
}

// DuelResult is what the bot reports after a duel resolves
type DuelResult struct {
	WinnerTelegramID int64
	LoserTelegramID  int64
	Bet              int64
	Pot              int64
	Tax              int64
	Payout           int64
	WinnerBalance    int64
	LoserBalance     int64
}

// EconomyStats summarises the community for /stats
type EconomyStats struct {
	LinkedUsers   int64
	TotalCredits  int64
	DuelsPlayed   int64
	CreditsBurned int64
	Pins          int64
	ActiveWarns   int64
}

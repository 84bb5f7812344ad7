package models

import (
	"time"
)

// TransactionType represents the type of credit change
type TransactionType string

const (
	TransactionTypeInitial  TransactionType = "initial"
	TransactionTypeDuelWin  TransactionType = "duel_win"
	TransactionTypeDuelLoss TransactionType = "duel_loss"
)

// BalanceHistory represents a historical credit change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UID                 string          `db:"uid"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

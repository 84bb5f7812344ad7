package repository

import (
	"context"
	"fmt"

	"socialmap/database"
	"socialmap/models"
)

// DuelRepository stores resolved duels
type DuelRepository struct {
	q queryable
}

// NewDuelRepository creates a new duel repository
func NewDuelRepository(db *database.DB) *DuelRepository {
	return &DuelRepository{q: db.Pool}
}

func newDuelRepositoryWithTx(tx queryable) *DuelRepository {
	return &DuelRepository{q: tx}
}

// Create persists a resolved duel
func (r *DuelRepository) Create(ctx context.Context, duel *models.Duel) error {
	query := `
		INSERT INTO duels (chat_id, initiator_telegram_id, acceptor_telegram_id, winner_telegram_id, bet, tax)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		duel.ChatID,
		duel.InitiatorTelegramID,
		duel.AcceptorTelegramID,
		duel.WinnerTelegramID,
		duel.Bet,
		duel.Tax,
	).Scan(&duel.ID, &duel.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create duel: %w", err)
	}
	return nil
}

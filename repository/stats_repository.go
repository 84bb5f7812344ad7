package repository

import (
	"context"
	"fmt"

	"socialmap/database"
	"socialmap/models"
)

// StatsRepository aggregates community-wide numbers
type StatsRepository struct {
	q queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{q: db.Pool}
}

func newStatsRepositoryWithTx(tx queryable) *StatsRepository {
	return &StatsRepository{q: tx}
}

// GetEconomyStats returns totals for /stats
func (r *StatsRepository) GetEconomyStats(ctx context.Context) (*models.EconomyStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE telegram_id IS NOT NULL),
			(SELECT COALESCE(SUM(credits), 0) FROM users WHERE telegram_id IS NOT NULL),
			(SELECT COUNT(*) FROM duels),
			(SELECT COALESCE(SUM(tax), 0) FROM duels),
			(SELECT COUNT(*) FROM locations),
			(SELECT COUNT(*) FROM telegram_moderation WHERE warn_count > 0)
	`

	var stats models.EconomyStats
	err := r.q.QueryRow(ctx, query).Scan(
		&stats.LinkedUsers,
		&stats.TotalCredits,
		&stats.DuelsPlayed,
		&stats.CreditsBurned,
		&stats.Pins,
		&stats.ActiveWarns,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get economy stats: %w", err)
	}
	return &stats, nil
}

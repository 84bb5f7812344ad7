package repository

import (
	"context"
	"fmt"

	"socialmap/database"
	"socialmap/models"
)

// WhiningAttemptRepository is the append-only log of caught evasion attempts
type WhiningAttemptRepository struct {
	q queryable
}

// NewWhiningAttemptRepository creates a new whining attempt repository
func NewWhiningAttemptRepository(db *database.DB) *WhiningAttemptRepository {
	return &WhiningAttemptRepository{q: db.Pool}
}

func newWhiningAttemptRepositoryWithTx(tx queryable) *WhiningAttemptRepository {
	return &WhiningAttemptRepository{q: tx}
}

// Append stores an attempt; the text is cut to the stored prefix length
func (r *WhiningAttemptRepository) Append(ctx context.Context, attempt *models.WhiningAttempt) error {
	query := `
		INSERT INTO whining_attempts (telegram_id, display_name, trigger, original_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	attempt.OriginalText = models.TruncateText(attempt.OriginalText)
	err := r.q.QueryRow(ctx, query,
		attempt.TelegramID,
		attempt.DisplayName,
		attempt.Trigger,
		attempt.OriginalText,
	).Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append whining attempt for user %d: %w", attempt.TelegramID, err)
	}
	return nil
}

// Recent returns the newest attempts first
func (r *WhiningAttemptRepository) Recent(ctx context.Context, limit int) ([]*models.WhiningAttempt, error) {
	query := `
		SELECT id, telegram_id, display_name, trigger, original_text, created_at
		FROM whining_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query whining attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.WhiningAttempt
	for rows.Next() {
		var a models.WhiningAttempt
		if err := rows.Scan(&a.ID, &a.TelegramID, &a.DisplayName, &a.Trigger, &a.OriginalText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan whining attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating whining attempts: %w", err)
	}
	return attempts, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialmap/database"
	"socialmap/models"

	"github.com/jackc/pgx/v5"
)

// ModerationRepository stores warn counters
type ModerationRepository struct {
	q queryable
}

// NewModerationRepository creates a new moderation repository
func NewModerationRepository(db *database.DB) *ModerationRepository {
	return &ModerationRepository{q: db.Pool}
}

func newModerationRepositoryWithTx(tx queryable) *ModerationRepository {
	return &ModerationRepository{q: tx}
}

// IncrementWarn creates the record with one warning or bumps an existing one.
// The upsert takes the row lock, so concurrent warns against one user serialize
// and each increment is counted exactly once.
func (r *ModerationRepository) IncrementWarn(ctx context.Context, telegramID int64, displayName, reason string, at time.Time) (int, error) {
	query := `
		INSERT INTO telegram_moderation (telegram_id, warn_count, last_warn_at, display_name, last_reason)
		VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET warn_count   = telegram_moderation.warn_count + 1,
		    last_warn_at = EXCLUDED.last_warn_at,
		    display_name = EXCLUDED.display_name,
		    last_reason  = EXCLUDED.last_reason
		RETURNING warn_count
	`

	var count int
	if err := r.q.QueryRow(ctx, query, telegramID, at, displayName, reason).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment warnings for user %d: %w", telegramID, err)
	}
	return count, nil
}

// GetForUpdate returns the locked record, or nil when the user has no record
func (r *ModerationRepository) GetForUpdate(ctx context.Context, telegramID int64) (*models.ModerationRecord, error) {
	query := `
		SELECT telegram_id, warn_count, last_warn_at, display_name, last_reason
		FROM telegram_moderation
		WHERE telegram_id = $1
		FOR UPDATE
	`

	var rec models.ModerationRecord
	err := r.q.QueryRow(ctx, query, telegramID).Scan(
		&rec.TelegramID,
		&rec.WarnCount,
		&rec.LastWarnAt,
		&rec.DisplayName,
		&rec.LastReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation record for user %d: %w", telegramID, err)
	}
	return &rec, nil
}

// SetWarnCount persists a decremented counter
func (r *ModerationRepository) SetWarnCount(ctx context.Context, telegramID int64, warnCount int) error {
	result, err := r.q.Exec(ctx, `UPDATE telegram_moderation SET warn_count = $1 WHERE telegram_id = $2`, warnCount, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set warnings for user %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("moderation record for user %d not found", telegramID)
	}
	return nil
}

// Delete removes the record; deleting a missing record is not an error
func (r *ModerationRepository) Delete(ctx context.Context, telegramID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM telegram_moderation WHERE telegram_id = $1`, telegramID); err != nil {
		return fmt.Errorf("failed to delete moderation record for user %d: %w", telegramID, err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"socialmap/database"
	"socialmap/models"

	"github.com/jackc/pgx/v5"
)

// ChatSettingsRepository stores per-chat flags
type ChatSettingsRepository struct {
	q queryable
}

// NewChatSettingsRepository creates a new chat settings repository
func NewChatSettingsRepository(db *database.DB) *ChatSettingsRepository {
	return &ChatSettingsRepository{q: db.Pool}
}

func newChatSettingsRepositoryWithTx(tx queryable) *ChatSettingsRepository {
	return &ChatSettingsRepository{q: tx}
}

// Get returns the settings, or nil when the chat was never configured
func (r *ChatSettingsRepository) Get(ctx context.Context, chatID int64) (*models.ChatSettings, error) {
	var settings models.ChatSettings
	err := r.q.QueryRow(ctx,
		`SELECT chat_id, lockdown, updated_at FROM chat_settings WHERE chat_id = $1`,
		chatID,
	).Scan(&settings.ChatID, &settings.Lockdown, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for chat %d: %w", chatID, err)
	}
	return &settings, nil
}

// SetLockdown creates or updates the chat's lockdown flag
func (r *ChatSettingsRepository) SetLockdown(ctx context.Context, chatID int64, lockdown bool) error {
	query := `
		INSERT INTO chat_settings (chat_id, lockdown, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET lockdown = EXCLUDED.lockdown, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.q.Exec(ctx, query, chatID, lockdown); err != nil {
		return fmt.Errorf("failed to set lockdown for chat %d: %w", chatID, err)
	}
	return nil
}

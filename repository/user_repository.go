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

const userColumns = `uid, display_name, avatar_url, credits, telegram_id, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Credits,
		&user.TelegramID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUID retrieves a user by their identity-provider id
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	return user, nil
}

// GetByTelegramID retrieves the user linked to a chat account
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID %d: %w", telegramID, err)
	}
	return user, nil
}

// GetByTelegramIDsForUpdate locks the linked users. Rows are locked in telegram id
// order so two transactions touching the same pair never deadlock.
func (r *UserRepository) GetByTelegramIDsForUpdate(ctx context.Context, telegramIDs ...int64) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE telegram_id = ANY($1)
		ORDER BY telegram_id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, telegramIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock users %v: %w", telegramIDs, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Create creates a new user with the starting credits
func (r *UserRepository) Create(ctx context.Context, uid, displayName string, initialCredits int64) (*models.User, error) {
	query := `
		INSERT INTO users (uid, display_name, credits)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, uid, displayName, initialCredits))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", uid, err)
	}
	return user, nil
}

// UpdateCredits sets a user's credits
func (r *UserRepository) UpdateCredits(ctx context.Context, uid string, credits int64) error {
	query := `
		UPDATE users
		SET credits = $1, updated_at = NOW()
		WHERE uid = $2
	`

	result, err := r.q.Exec(ctx, query, credits, uid)
	if err != nil {
		return fmt.Errorf("failed to update credits for user %s: %w", uid, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

// UpdateAvatar stores the hosted avatar url
func (r *UserRepository) UpdateAvatar(ctx context.Context, uid, avatarURL string) error {
	result, err := r.q.Exec(ctx, `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE uid = $2`, avatarURL, uid)
	if err != nil {
		return fmt.Errorf("failed to update avatar for user %s: %w", uid, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

// SetLinkCode stores a one-time code for binding a chat account
func (r *UserRepository) SetLinkCode(ctx context.Context, uid, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET link_code = $1, link_code_expires_at = $2, updated_at = NOW()
		WHERE uid = $3
	`

	result, err := r.q.Exec(ctx, query, code, expiresAt, uid)
	if err != nil {
		return fmt.Errorf("failed to set link code for user %s: %w", uid, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

// GetByLinkCode returns the owner of a code that has not expired at now
func (r *UserRepository) GetByLinkCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE link_code = $1 AND link_code_expires_at > $2
		FOR UPDATE
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, code, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by link code: %w", err)
	}
	return user, nil
}

// LinkTelegram binds a chat account and clears the link code
func (r *UserRepository) LinkTelegram(ctx context.Context, uid string, telegramID int64) error {
	query := `
		UPDATE users
		SET telegram_id = $1, link_code = NULL, link_code_expires_at = NULL, updated_at = NOW()
		WHERE uid = $2
	`

	result, err := r.q.Exec(ctx, query, telegramID, uid)
	if err != nil {
		return fmt.Errorf("failed to link telegram ID %d to user %s: %w", telegramID, uid, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

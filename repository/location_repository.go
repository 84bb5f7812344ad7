package repository

import (
	"context"
	"errors"
	"fmt"

	"socialmap/database"
	"socialmap/models"

	"github.com/jackc/pgx/v5"
)

// LocationRepository stores one map pin per owner
type LocationRepository struct {
	q queryable
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{q: db.Pool}
}

func newLocationRepositoryWithTx(tx queryable) *LocationRepository {
	return &LocationRepository{q: tx}
}

// GetByOwner returns the owner's pin, or nil when there is none.
// Inside a transaction the row stays locked until commit.
func (r *LocationRepository) GetByOwner(ctx context.Context, ownerID string) (*models.LocationPin, error) {
	query := `
		SELECT id, owner_id, latitude, longitude, place_name, created_at, updated_at
		FROM locations
		WHERE owner_id = $1
		FOR UPDATE
	`

	var pin models.LocationPin
	err := r.q.QueryRow(ctx, query, ownerID).Scan(
		&pin.ID,
		&pin.OwnerID,
		&pin.Latitude,
		&pin.Longitude,
		&pin.PlaceName,
		&pin.CreatedAt,
		&pin.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location for owner %s: %w", ownerID, err)
	}
	return &pin, nil
}

// Create inserts a new pin
func (r *LocationRepository) Create(ctx context.Context, pin *models.LocationPin) error {
	query := `
		INSERT INTO locations (owner_id, latitude, longitude, place_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, pin.OwnerID, pin.Latitude, pin.Longitude, pin.PlaceName).
		Scan(&pin.ID, &pin.CreatedAt, &pin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create location for owner %s: %w", pin.OwnerID, err)
	}
	return nil
}

// Update moves an existing pin in place
func (r *LocationRepository) Update(ctx context.Context, pin *models.LocationPin) error {
	query := `
		UPDATE locations
		SET latitude = $1, longitude = $2, place_name = $3, updated_at = NOW()
		WHERE owner_id = $4
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, pin.Latitude, pin.Longitude, pin.PlaceName, pin.OwnerID).
		Scan(&pin.ID, &pin.CreatedAt, &pin.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("location for owner %s not found", pin.OwnerID)
	}
	if err != nil {
		return fmt.Errorf("failed to update location for owner %s: %w", pin.OwnerID, err)
	}
	return nil
}

// DeleteByOwner removes the owner's pin and reports whether one existed
func (r *LocationRepository) DeleteByOwner(ctx context.Context, ownerID string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM locations WHERE owner_id = $1`, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete location for owner %s: %w", ownerID, err)
	}
	return result.RowsAffected() > 0, nil
}

// GetAll returns every pin on the map
func (r *LocationRepository) GetAll(ctx context.Context) ([]*models.LocationPin, error) {
	query := `
		SELECT id, owner_id, latitude, longitude, place_name, created_at, updated_at
		FROM locations
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	pins := make([]*models.LocationPin, 0)
	for rows.Next() {
		var pin models.LocationPin
		if err := rows.Scan(
			&pin.ID,
			&pin.OwnerID,
			&pin.Latitude,
			&pin.Longitude,
			&pin.PlaceName,
			&pin.CreatedAt,
			&pin.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		pins = append(pins, &pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return pins, nil
}

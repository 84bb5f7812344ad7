package testutil

import (
	"context"
	"testing"
	"time"

	"socialmap/database"
	"socialmap/models"

	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(uid, displayName string) *models.User {
	now := time.Now()
	return &models.User{
		UID:         uid,
		DisplayName: displayName,
		Credits:     1000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateTestPin creates a test map pin
func CreateTestPin(ownerID, placeName string, lat, lng float64) *models.LocationPin {
	return &models.LocationPin{
		OwnerID:   ownerID,
		PlaceName: placeName,
		Latitude:  lat,
		Longitude: lng,
	}
}

// InsertLinkedUser writes a user bound to a chat account straight into the database
func InsertLinkedUser(t *testing.T, db *database.DB, uid string, telegramID, credits int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (uid, display_name, credits, telegram_id) VALUES ($1, $2, $3, $4)`,
		uid, uid, credits, telegramID,
	)
	require.NoError(t, err)
}

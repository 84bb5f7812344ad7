package models

import (
	"time"
)

// LocationPin is the single map marker a user owns
type LocationPin struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Latitude  float64   `db:"latitude" json:"lat"`
	Longitude float64   `db:"longitude" json:"lng"`
	PlaceName string    `db:"place_name" json:"placeName"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

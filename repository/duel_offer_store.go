package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialmap/models"

	"github.com/redis/go-redis/v9"
)

const duelOfferKeyPrefix = "socialmap:duel_offer:"

// RedisDuelOfferStore keeps pending duel offers in Redis so an offer survives a
// restart and expires on its own
type RedisDuelOfferStore struct {
	client redis.UniversalClient
}

// NewRedisDuelOfferStore creates a new offer store
func NewRedisDuelOfferStore(client redis.UniversalClient) *RedisDuelOfferStore {
	return &RedisDuelOfferStore{client: client}
}

func duelOfferKey(offerID string) string {
	return duelOfferKeyPrefix + offerID
}

// Save stores an offer for ttl
func (s *RedisDuelOfferStore) Save(ctx context.Context, offer *models.DuelOffer, ttl time.Duration) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to marshal duel offer: %w", err)
	}
	if err := s.client.Set(ctx, duelOfferKey(offer.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save duel offer %s: %w", offer.ID, err)
	}
	return nil
}

// Get returns the offer without consuming it, or nil when absent
func (s *RedisDuelOfferStore) Get(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	data, err := s.client.Get(ctx, duelOfferKey(offerID)).Bytes()
	return decodeOffer(offerID, data, err)
}

// Claim removes and returns the offer with GETDEL, so concurrent accepts resolve once
func (s *RedisDuelOfferStore) Claim(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	data, err := s.client.GetDel(ctx, duelOfferKey(offerID)).Bytes()
	return decodeOffer(offerID, data, err)
}

func decodeOffer(offerID string, data []byte, err error) (*models.DuelOffer, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read duel offer %s: %w", offerID, err)
	}

	var offer models.DuelOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, fmt.Errorf("failed to decode duel offer %s: %w", offerID, err)
	}
	return &offer, nil
}

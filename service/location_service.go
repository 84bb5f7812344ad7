package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"socialmap/database"
	"socialmap/events"
	"socialmap/models"

	log "github.com/sirupsen/logrus"
)

// locationService implements the LocationService interface
type locationService struct {
	uowFactory UnitOfWorkFactory
	resolver   PlaceResolver
}

// NewLocationService creates a new location service
func NewLocationService(uowFactory UnitOfWorkFactory, resolver PlaceResolver) LocationService {
	return &locationService{
		uowFactory: uowFactory,
		resolver:   resolver,
	}
}

// ValidateCoordinates rejects NaN, infinities and out of range values
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinates, lat, lng)
	}
	return nil
}

// SetLocation resolves the submitted coordinates to a named place and stores the
// place's centroid as the owner's pin. Raw coordinates are never persisted.
func (s *locationService) SetLocation(ctx context.Context, ownerID string, lat, lng float64) (*models.LocationPin, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	place, err := s.resolver.Resolve(ctx, lat, lng)
	if err != nil {
		log.WithFields(log.Fields{
			"ownerID": ownerID,
			"error":   err,
		}).Warn("Failed to resolve place")
		return nil, fmt.Errorf("%w: %v", ErrPlaceNotResolved, err)
	}
	if place == nil {
		return nil, ErrPlaceNotResolved
	}

	return s.Upsert(ctx, ownerID, place.Name, place.Latitude, place.Longitude)
}

// Upsert keeps at most one pin per owner: an existing pin is moved, otherwise one
// is inserted. A concurrent first insert for the same owner is retried as a move.
func (s *locationService) Upsert(ctx context.Context, ownerID, placeName string, lat, lng float64) (*models.LocationPin, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	placeName = strings.TrimSpace(placeName)

	var (
		pin     *models.LocationPin
		created bool
	)
	attempt := func(ctx context.Context) error {
		var err error
		pin, created, err = s.upsertOnce(ctx, ownerID, placeName, lat, lng)
		return err
	}

	err := database.WithRetry(ctx, database.DefaultTxAttempts, attempt)
	if err != nil && database.IsUniqueViolation(err) {
		err = database.WithRetry(ctx, database.DefaultTxAttempts, attempt)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ownerID":   ownerID,
		"placeName": placeName,
		"created":   created,
	}).Info("Location pin stored")

	return pin, nil
}

func (s *locationService) upsertOnce(ctx context.Context, ownerID, placeName string, lat, lng float64) (*models.LocationPin, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.LocationRepository()
	pin, err := repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}

	created := pin == nil
	if created {
		pin = &models.LocationPin{OwnerID: ownerID}
	}
	pin.PlaceName = placeName
	pin.Latitude = lat
	pin.Longitude = lng

	if created {
		err = repo.Create(ctx, pin)
	} else {
		err = repo.Update(ctx, pin)
	}
	if err != nil {
		return nil, false, err
	}

	uow.EventBus().Publish(events.LocationUpdatedEvent{
		OwnerID:   ownerID,
		PlaceName: placeName,
		Latitude:  lat,
		Longitude: lng,
		Created:   created,
	})

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pin, created, nil
}

// Remove deletes the owner's pin. A missing pin reports false, not an error.
func (s *locationService) Remove(ctx context.Context, ownerID string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	found, err := uow.LocationRepository().DeleteByOwner(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	uow.EventBus().Publish(events.LocationRemovedEvent{OwnerID: ownerID})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// List returns every pin for the map
func (s *locationService) List(ctx context.Context) ([]*models.LocationPin, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pins, err := uow.LocationRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return pins, nil
}

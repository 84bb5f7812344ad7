package service

import (
	"context"
	"fmt"

	"socialmap/database"
	"socialmap/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory      UnitOfWorkFactory
	startingCredits int64
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, startingCredits int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingCredits: startingCredits,
	}
}

// GetOrCreateUser retrieves an existing profile or creates one with the starting credits
func (s *userService) GetOrCreateUser(ctx context.Context, uid, displayName string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, uid, displayName, s.startingCredits)
	if err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent first request for the same profile
			return s.getExisting(ctx, uid)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		UID:             uid,
		BalanceBefore:   0,
		BalanceAfter:    s.startingCredits,
		ChangeAmount:    s.startingCredits,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"display_name": displayName,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record starting credits: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *userService) getExisting(ctx context.Context, uid string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	return user, nil
}

// GetByTelegramID returns the profile linked to a chat account
func (s *userService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrAccountNotLinked
	}
	return user, nil
}

// GetBalanceHistory returns the latest credit changes of a profile
func (s *userService) GetBalanceHistory(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return history, nil
}

package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// chatSettingsService implements the ChatSettingsService interface
type chatSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewChatSettingsService creates a new chat settings service
func NewChatSettingsService(uowFactory UnitOfWorkFactory) ChatSettingsService {
	return &chatSettingsService{
		uowFactory: uowFactory,
	}
}

// IsLockdown reports the lockdown flag. A chat that was never configured is open.
func (s *chatSettingsService) IsLockdown(ctx context.Context, chatID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.ChatSettingsRepository().Get(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to get chat settings: %w", err)
	}
	if settings == nil {
		return false, nil
	}
	return settings.Lockdown, nil
}

// SetLockdown persists the lockdown flag
func (s *chatSettingsService) SetLockdown(ctx context.Context, chatID int64, lockdown bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ChatSettingsRepository().SetLockdown(ctx, chatID, lockdown); err != nil {
		return fmt.Errorf("failed to update lockdown: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"chatID":   chatID,
		"lockdown": lockdown,
	}).Info("Lockdown updated")

	return nil
}

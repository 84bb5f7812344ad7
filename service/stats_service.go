package service

import (
	"context"
	"fmt"

	"socialmap/models"
)

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// GetEconomyStats returns the community-wide numbers shown by /stats
func (s *statsService) GetEconomyStats(ctx context.Context) (*models.EconomyStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.StatsRepository().GetEconomyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get economy stats: %w", err)
	}
	return stats, nil
}

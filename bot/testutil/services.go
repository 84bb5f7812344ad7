package testutil

import (
	"context"

	"socialmap/models"
	"socialmap/service"

	"github.com/stretchr/testify/mock"
)

// MockModerationService is a mock implementation of service.ModerationService
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) Warn(ctx context.Context, req service.WarnRequest) (*service.WarnOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WarnOutcome), args.Error(1)
}

func (m *MockModerationService) Unwarn(ctx context.Context, telegramID int64) (*service.UnwarnOutcome, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UnwarnOutcome), args.Error(1)
}

func (m *MockModerationService) AutoMute(ctx context.Context, req service.AutoMuteRequest) (*service.AutoMuteOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AutoMuteOutcome), args.Error(1)
}

func (m *MockModerationService) CheckImmunity(ctx context.Context, chatID, userID int64) (service.Immunity, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Get(0).(service.Immunity), args.Error(1)
}

func (m *MockModerationService) RecentWhining(ctx context.Context, limit int) ([]*models.WhiningAttempt, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WhiningAttempt), args.Error(1)
}

// MockDuelService is a mock implementation of service.DuelService
type MockDuelService struct {
	mock.Mock
}

func (m *MockDuelService) Offer(ctx context.Context, chatID, initiatorTelegramID int64, initiatorName string, bet int64) (*models.DuelOffer, error) {
	args := m.Called(ctx, chatID, initiatorTelegramID, initiatorName, bet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelOffer), args.Error(1)
}

func (m *MockDuelService) Accept(ctx context.Context, offerID string, acceptorTelegramID int64) (*models.DuelOffer, *models.DuelResult, error) {
	args := m.Called(ctx, offerID, acceptorTelegramID)
	var offer *models.DuelOffer
	if args.Get(0) != nil {
		offer = args.Get(0).(*models.DuelOffer)
	}
	var result *models.DuelResult
	if args.Get(1) != nil {
		result = args.Get(1).(*models.DuelResult)
	}
	return offer, result, args.Error(2)
}

func (m *MockDuelService) Resolve(ctx context.Context, chatID, initiatorTelegramID, acceptorTelegramID, bet int64) (*models.DuelResult, error) {
	args := m.Called(ctx, chatID, initiatorTelegramID, acceptorTelegramID, bet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelResult), args.Error(1)
}

// MockLinkService is a mock implementation of service.LinkService
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) IssueCode(ctx context.Context, uid string) (*models.LinkCode, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkCode), args.Error(1)
}

func (m *MockLinkService) Link(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, code, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockChatSettingsService is a mock implementation of service.ChatSettingsService
type MockChatSettingsService struct {
	mock.Mock
}

func (m *MockChatSettingsService) IsLockdown(ctx context.Context, chatID int64) (bool, error) {
	args := m.Called(ctx, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatSettingsService) SetLockdown(ctx context.Context, chatID int64, lockdown bool) error {
	args := m.Called(ctx, chatID, lockdown)
	return args.Error(0)
}

// MockStatsService is a mock implementation of service.StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetEconomyStats(ctx context.Context) (*models.EconomyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EconomyStats), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreateUser(ctx context.Context, uid, displayName string) (*models.User, error) {
	args := m.Called(ctx, uid, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetBalanceHistory(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, uid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

package service

import (
	"context"
	"time"

	"socialmap/events"
	"socialmap/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramIDsForUpdate(ctx context.Context, telegramIDs ...int64) ([]*models.User, error) {
	args := m.Called(ctx, telegramIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, uid, displayName string, initialCredits int64) (*models.User, error) {
	args := m.Called(ctx, uid, displayName, initialCredits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateCredits(ctx context.Context, uid string, credits int64) error {
	args := m.Called(ctx, uid, credits)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, uid, avatarURL string) error {
	args := m.Called(ctx, uid, avatarURL)
	return args.Error(0)
}

func (m *MockUserRepository) SetLinkCode(ctx context.Context, uid, code string, expiresAt time.Time) error {
	args := m.Called(ctx, uid, code, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) GetByLinkCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) LinkTelegram(ctx context.Context, uid string, telegramID int64) error {
	args := m.Called(ctx, uid, telegramID)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, uid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockDuelRepository is a mock implementation of DuelRepository
type MockDuelRepository struct {
	mock.Mock
}

func (m *MockDuelRepository) Create(ctx context.Context, duel *models.Duel) error {
	args := m.Called(ctx, duel)
	return args.Error(0)
}

// MockDuelOfferStore is a mock implementation of DuelOfferStore
type MockDuelOfferStore struct {
	mock.Mock
}

func (m *MockDuelOfferStore) Save(ctx context.Context, offer *models.DuelOffer, ttl time.Duration) error {
	args := m.Called(ctx, offer, ttl)
	return args.Error(0)
}

func (m *MockDuelOfferStore) Get(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelOffer), args.Error(1)
}

func (m *MockDuelOfferStore) Claim(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelOffer), args.Error(1)
}

// MockLocationRepository is a mock implementation of LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetByOwner(ctx context.Context, ownerID string) (*models.LocationPin, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationPin), args.Error(1)
}

func (m *MockLocationRepository) Create(ctx context.Context, pin *models.LocationPin) error {
	args := m.Called(ctx, pin)
	return args.Error(0)
}

func (m *MockLocationRepository) Update(ctx context.Context, pin *models.LocationPin) error {
	args := m.Called(ctx, pin)
	return args.Error(0)
}

func (m *MockLocationRepository) DeleteByOwner(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocationRepository) GetAll(ctx context.Context) ([]*models.LocationPin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LocationPin), args.Error(1)
}

// MockModerationRepository is a mock implementation of ModerationRepository
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) IncrementWarn(ctx context.Context, telegramID int64, displayName, reason string, at time.Time) (int, error) {
	args := m.Called(ctx, telegramID, displayName, reason, at)
	return args.Int(0), args.Error(1)
}

func (m *MockModerationRepository) GetForUpdate(ctx context.Context, telegramID int64) (*models.ModerationRecord, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModerationRecord), args.Error(1)
}

func (m *MockModerationRepository) SetWarnCount(ctx context.Context, telegramID int64, warnCount int) error {
	args := m.Called(ctx, telegramID, warnCount)
	return args.Error(0)
}

func (m *MockModerationRepository) Delete(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

// MockWhiningAttemptRepository is a mock implementation of WhiningAttemptRepository
type MockWhiningAttemptRepository struct {
	mock.Mock
}

func (m *MockWhiningAttemptRepository) Append(ctx context.Context, attempt *models.WhiningAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockWhiningAttemptRepository) Recent(ctx context.Context, limit int) ([]*models.WhiningAttempt, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WhiningAttempt), args.Error(1)
}

// MockChatSettingsRepository is a mock implementation of ChatSettingsRepository
type MockChatSettingsRepository struct {
	mock.Mock
}

func (m *MockChatSettingsRepository) Get(ctx context.Context, chatID int64) (*models.ChatSettings, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSettings), args.Error(1)
}

func (m *MockChatSettingsRepository) SetLockdown(ctx context.Context, chatID int64, lockdown bool) error {
	args := m.Called(ctx, chatID, lockdown)
	return args.Error(0)
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetEconomyStats(ctx context.Context) (*models.EconomyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EconomyStats), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are plain
// fields; only the transaction lifecycle goes through mock expectations.
type MockUnitOfWork struct {
	mock.Mock

	UserRepo           UserRepository
	BalanceHistoryRepo BalanceHistoryRepository
	DuelRepo           DuelRepository
	LocationRepo       LocationRepository
	ModerationRepo     ModerationRepository
	WhiningRepo        WhiningAttemptRepository
	ChatSettingsRepo   ChatSettingsRepository
	StatsRepo          StatsRepository
	Publisher          EventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.UserRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.BalanceHistoryRepo
}

func (m *MockUnitOfWork) DuelRepository() DuelRepository {
	return m.DuelRepo
}

func (m *MockUnitOfWork) LocationRepository() LocationRepository {
	return m.LocationRepo
}

func (m *MockUnitOfWork) ModerationRepository() ModerationRepository {
	return m.ModerationRepo
}

func (m *MockUnitOfWork) WhiningAttemptRepository() WhiningAttemptRepository {
	return m.WhiningRepo
}

func (m *MockUnitOfWork) ChatSettingsRepository() ChatSettingsRepository {
	return m.ChatSettingsRepo
}

func (m *MockUnitOfWork) StatsRepository() StatsRepository {
	return m.StatsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

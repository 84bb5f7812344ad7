package api

import (
	"context"
	"errors"
	"sync"

	"socialmap/models"

	fbauth "firebase.google.com/go/v4/auth"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetOrCreateUser(ctx context.Context, uid, displayName string) (*models.User, error) {
	args := m.Called(ctx, uid, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetBalanceHistory(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, uid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

type mockLocationService struct {
	mock.Mock
}

func (m *mockLocationService) SetLocation(ctx context.Context, ownerID string, lat, lng float64) (*models.LocationPin, error) {
	args := m.Called(ctx, ownerID, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationPin), args.Error(1)
}

func (m *mockLocationService) Upsert(ctx context.Context, ownerID, placeName string, lat, lng float64) (*models.LocationPin, error) {
	args := m.Called(ctx, ownerID, placeName, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationPin), args.Error(1)
}

func (m *mockLocationService) Remove(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocationService) List(ctx context.Context) ([]*models.LocationPin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LocationPin), args.Error(1)
}

type mockAvatarService struct {
	mock.Mock
}

func (m *mockAvatarService) UploadAvatar(ctx context.Context, uid, dataURL string) (string, error) {
	args := m.Called(ctx, uid, dataURL)
	return args.String(0), args.Error(1)
}

type mockLinkService struct {
	mock.Mock
}

func (m *mockLinkService) IssueCode(ctx context.Context, uid string) (*models.LinkCode, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkCode), args.Error(1)
}

func (m *mockLinkService) Link(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, code, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// staticVerifier accepts "token-<uid>"
type staticVerifier struct{}

func (staticVerifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	const prefix = "token-"
	if len(idToken) <= len(prefix) || idToken[:len(prefix)] != prefix {
		return nil, errors.New("invalid token")
	}
	return &fbauth.Token{UID: idToken[len(prefix):], Claims: map[string]interface{}{"name": "Alice"}}, nil
}

type recordingUpdates struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
}

func (r *recordingUpdates) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

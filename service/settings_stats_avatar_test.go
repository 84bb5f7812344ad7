package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialmap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSettingsService(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured chat is open", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction()
		m.ChatSettingsRepo.On("Get", ctx, TestChatID).Return(nil, nil)

		locked, err := NewChatSettingsService(m.Factory).IsLockdown(ctx, TestChatID)
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("stored flag", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction()
		m.ChatSettingsRepo.On("Get", ctx, TestChatID).Return(&models.ChatSettings{ChatID: TestChatID, Lockdown: true}, nil)

		locked, err := NewChatSettingsService(m.Factory).IsLockdown(ctx, TestChatID)
		require.NoError(t, err)
		assert.True(t, locked)
	})

	t.Run("set commits", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction()
		m.ChatSettingsRepo.On("SetLockdown", ctx, TestChatID, true).Return(nil)

		require.NoError(t, NewChatSettingsService(m.Factory).SetLockdown(ctx, TestChatID, true))
		m.UoW.AssertCalled(t, "Commit")
		m.AssertAllExpectations(t)
	})

	t.Run("set failure does not commit", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction()
		m.ChatSettingsRepo.On("SetLockdown", ctx, TestChatID, false).Return(errors.New("boom"))

		assert.Error(t, NewChatSettingsService(m.Factory).SetLockdown(ctx, TestChatID, false))
		m.UoW.AssertNotCalled(t, "Commit")
	})
}

func TestStatsService_GetEconomyStats(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectTransaction()

	want := &models.EconomyStats{LinkedUsers: 3, TotalCredits: 2980, DuelsPlayed: 1, CreditsBurned: 20}
	m.StatsRepo.On("GetEconomyStats", ctx).Return(want, nil)

	got, err := NewStatsService(m.Factory).GetEconomyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

type fakeUploader struct {
	url      string
	err      error
	folder   string
	publicID string
}

func (u *fakeUploader) UploadDataURL(ctx context.Context, dataURL, folder, publicID string) (string, error) {
	u.folder = folder
	u.publicID = publicID
	return u.url, u.err
}

const tinyPNG = "data:image/png;base64,iVBORw0KGgo="

func TestValidateAvatarDataURL(t *testing.T) {
	assert.NoError(t, ValidateAvatarDataURL(tinyPNG))
	assert.NoError(t, ValidateAvatarDataURL("data:image/jpeg;base64,/9j/4AAQ"))

	for _, bad := range []string{
		"",
		"https://example.com/a.png",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,raw",
		"data:image/png;base64,",
		"data:image/png;base64," + strings.Repeat("A", MaxAvatarDataURLLength),
	} {
		assert.ErrorIs(t, ValidateAvatarDataURL(bad), ErrInvalidAvatar, "%.40q", bad)
	}
}

func TestAvatarService_UploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("stores hosted url", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction()
		users := newMemoryUserRepo()
		users.add("uid-1", 0, 0)
		m.UoW.UserRepo = users
		uploader := &fakeUploader{url: "https://res.cloudinary.com/demo/image/upload/uid-1.png"}

		url, err := NewAvatarService(m.Factory, uploader).UploadAvatar(ctx, "uid-1", tinyPNG)
		require.NoError(t, err)
		assert.Equal(t, uploader.url, url)
		assert.Equal(t, AvatarFolder, uploader.folder)
		assert.Equal(t, "uid-1", uploader.publicID)

		user, _ := users.GetByUID(ctx, "uid-1")
		assert.Equal(t, uploader.url, user.AvatarURL)
	})

	t.Run("upload failure", func(t *testing.T) {
		m := NewTestMocks()
		uploader := &fakeUploader{err: errors.New("quota exceeded")}

		_, err := NewAvatarService(m.Factory, uploader).UploadAvatar(ctx, "uid-1", tinyPNG)
		assert.Error(t, err)
		m.Factory.AssertNotCalled(t, "Create")
	})

	t.Run("invalid payload never uploads", func(t *testing.T) {
		m := NewTestMocks()
		uploader := &fakeUploader{}

		_, err := NewAvatarService(m.Factory, uploader).UploadAvatar(ctx, "uid-1", "not a data url")
		assert.ErrorIs(t, err, ErrInvalidAvatar)
		assert.Empty(t, uploader.publicID)
	})
}

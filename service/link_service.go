package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"socialmap/database"
	"socialmap/events"
	"socialmap/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// LinkCodeTTL is how long an issued code can be redeemed with /link
	LinkCodeTTL = 15 * time.Minute

	linkCodeLength = 8
)

// linkService implements the LinkService interface
type linkService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
	newCode    func() string
}

// NewLinkService creates a new link service
func NewLinkService(uowFactory UnitOfWorkFactory) LinkService {
	return &linkService{
		uowFactory: uowFactory,
		now:        time.Now,
		newCode:    generateLinkCode,
	}
}

func generateLinkCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:linkCodeLength])
}

// NormalizeLinkCode makes user-typed codes comparable with issued ones
func NormalizeLinkCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IssueCode replaces any previous code of the profile with a fresh one
func (s *linkService) IssueCode(ctx context.Context, uid string) (*models.LinkCode, error) {
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

	code := &models.LinkCode{
		UID:       uid,
		Code:      s.newCode(),
		ExpiresAt: s.now().Add(LinkCodeTTL),
	}
	if err := uow.UserRepository().SetLinkCode(ctx, uid, code.Code, code.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store link code: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return code, nil
}

// Link binds telegramID to the profile owning code. The code is single use.
func (s *linkService) Link(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	code = NormalizeLinkCode(code)
	if len(code) != linkCodeLength {
		return nil, ErrInvalidLinkCode
	}

	var user *models.User
	err := database.WithRetry(ctx, database.DefaultTxAttempts, func(ctx context.Context) error {
		var err error
		user, err = s.linkOnce(ctx, code, telegramID)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyLinked
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"uid":        user.UID,
		"telegramID": telegramID,
	}).Info("Chat account linked")

	return user, nil
}

func (s *linkService) linkOnce(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.UserRepository()
	user, err := repo.GetByLinkCode(ctx, code, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to look up link code: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidLinkCode
	}

	if err := repo.LinkTelegram(ctx, user.UID, telegramID); err != nil {
		return nil, err
	}
	id := telegramID
	user.TelegramID = &id

	uow.EventBus().Publish(events.AccountLinkedEvent{
		UID:        user.UID,
		TelegramID: telegramID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

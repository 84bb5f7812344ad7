package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"socialmap/database"
	"socialmap/events"
	"socialmap/models"

	log "github.com/sirupsen/logrus"
)

// AutoMuteDuration is how long a caught evasion attempt silences the sender
const AutoMuteDuration = 5 * time.Hour

// Immunity classifies how moderation treats a member
type Immunity int

const (
	ImmunityNone Immunity = iota
	// ImmunityAdmin members are never restricted, admins only get notified
	ImmunityAdmin
	// ImmunityProtected covers service accounts and the bot itself; they are skipped silently
	ImmunityProtected
)

// ModerationSettings configures the state machine
type ModerationSettings struct {
	MaxWarns     int
	MuteDuration time.Duration
	AdminIDs     []int64
	ImmuneIDs    []int64
	BotID        int64
}

// WarnRequest describes one strike against a member
type WarnRequest struct {
	ChatID      int64
	TelegramID  int64
	DisplayName string
	Reason      string
}

// WarnOutcome reports the counter after a warn. Banned means the threshold was
// reached, the member was banned and the record is gone.
type WarnOutcome struct {
	Count  int
	Max    int
	Banned bool
}

// UnwarnOutcome reports the counter after a warning was lifted
type UnwarnOutcome struct {
	Count   int
	Max     int
	Cleared bool
}

// AutoMuteRequest describes a message caught by the evasion matcher
type AutoMuteRequest struct {
	ChatID      int64
	TelegramID  int64
	DisplayName string
	MessageID   int
	Text        string
	Trigger     string
}

// AutoMuteAction is what AutoMute ended up doing
type AutoMuteAction int

const (
	AutoMuteSkipped AutoMuteAction = iota
	AutoMuteAdminNotified
	AutoMuteRestrictFailed
	AutoMuteApplied
)

// AutoMuteOutcome reports the result of AutoMute
type AutoMuteOutcome struct {
	Action     AutoMuteAction
	MutedUntil time.Time
	Warn       *WarnOutcome
}

// moderationService implements the ModerationService interface
type moderationService struct {
	uowFactory UnitOfWorkFactory
	banner     MemberBanner
	restrictor MemberRestrictor
	deleter    MessageDeleter
	admins     AdminChecker
	settings   ModerationSettings
	now        func() time.Time
}

// NewModerationService creates a new moderation service
func NewModerationService(
	uowFactory UnitOfWorkFactory,
	banner MemberBanner,
	restrictor MemberRestrictor,
	deleter MessageDeleter,
	admins AdminChecker,
	settings ModerationSettings,
) ModerationService {
	if settings.MaxWarns <= 0 {
		settings.MaxWarns = 3
	}
	if settings.MuteDuration <= 0 {
		settings.MuteDuration = AutoMuteDuration
	}
	return &moderationService{
		uowFactory: uowFactory,
		banner:     banner,
		restrictor: restrictor,
		deleter:    deleter,
		admins:     admins,
		settings:   settings,
		now:        time.Now,
	}
}

// Warn adds a strike. Reaching MaxWarns bans the member and deletes the record in
// the same transaction; if the ban call fails nothing is persisted.
func (s *moderationService) Warn(ctx context.Context, req WarnRequest) (*WarnOutcome, error) {
	var outcome *WarnOutcome
	err := database.WithRetry(ctx, database.DefaultTxAttempts, func(ctx context.Context) error {
		var err error
		outcome, err = s.warnOnce(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"chatID":     req.ChatID,
		"telegramID": req.TelegramID,
		"count":      outcome.Count,
		"max":        outcome.Max,
		"banned":     outcome.Banned,
		"reason":     req.Reason,
	}).Info("Warning issued")

	return outcome, nil
}

func (s *moderationService) warnOnce(ctx context.Context, req WarnRequest) (*WarnOutcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.ModerationRepository()
	count, err := repo.IncrementWarn(ctx, req.TelegramID, req.DisplayName, req.Reason, s.now())
	if err != nil {
		return nil, err
	}

	maxWarns := s.settings.MaxWarns
	if count < maxWarns {
		uow.EventBus().Publish(events.UserWarnedEvent{
			TelegramID: req.TelegramID,
			WarnCount:  count,
			MaxWarns:   maxWarns,
			Reason:     req.Reason,
		})
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &WarnOutcome{Count: count, Max: maxWarns}, nil
	}

	// The row lock from the increment is still held, so no concurrent warn can
	// observe the counter at or above the threshold.
	if err := s.banner.BanMember(ctx, req.ChatID, req.TelegramID); err != nil {
		return nil, fmt.Errorf("failed to ban user %d: %w", req.TelegramID, err)
	}
	if err := repo.Delete(ctx, req.TelegramID); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserBannedEvent{
		ChatID:     req.ChatID,
		TelegramID: req.TelegramID,
		Reason:     req.Reason,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &WarnOutcome{Count: maxWarns, Max: maxWarns, Banned: true}, nil
}

// Unwarn lifts one strike; the record is removed when none are left
func (s *moderationService) Unwarn(ctx context.Context, telegramID int64) (*UnwarnOutcome, error) {
	var outcome *UnwarnOutcome
	err := database.WithRetry(ctx, database.DefaultTxAttempts, func(ctx context.Context) error {
		var err error
		outcome, err = s.unwarnOnce(ctx, telegramID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *moderationService) unwarnOnce(ctx context.Context, telegramID int64) (*UnwarnOutcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.ModerationRepository()
	record, err := repo.GetForUpdate(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.WarnCount <= 0 {
		return nil, ErrNoActiveWarns
	}

	remaining := record.WarnCount - 1
	if remaining <= 0 {
		if err := repo.Delete(ctx, telegramID); err != nil {
			return nil, err
		}
		remaining = 0
	} else if err := repo.SetWarnCount(ctx, telegramID, remaining); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserUnwarnedEvent{
		TelegramID: telegramID,
		WarnCount:  remaining,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &UnwarnOutcome{Count: remaining, Max: s.settings.MaxWarns, Cleared: remaining == 0}, nil
}

// CheckImmunity classifies a member. Configured admins and chat administrators
// are admins; configured immune ids and the bot itself are protected.
func (s *moderationService) CheckImmunity(ctx context.Context, chatID, userID int64) (Immunity, error) {
	if userID == s.settings.BotID || slices.Contains(s.settings.ImmuneIDs, userID) {
		return ImmunityProtected, nil
	}
	if slices.Contains(s.settings.AdminIDs, userID) {
		return ImmunityAdmin, nil
	}

	isAdmin, err := s.admins.IsChatAdmin(ctx, chatID, userID)
	if err != nil {
		return ImmunityNone, fmt.Errorf("failed to check admin status of %d: %w", userID, err)
	}
	if isAdmin {
		return ImmunityAdmin, nil
	}
	return ImmunityNone, nil
}

// AutoMute handles a message caught by the evasion matcher: delete it, log the
// attempt, restrict the sender for MuteDuration and add a warning tagged with
// the trigger. The attempt is logged even when the restriction fails; a failed
// restriction applies no warning.
func (s *moderationService) AutoMute(ctx context.Context, req AutoMuteRequest) (*AutoMuteOutcome, error) {
	logger := log.WithFields(log.Fields{
		"chatID":     req.ChatID,
		"telegramID": req.TelegramID,
		"trigger":    req.Trigger,
	})

	immunity, err := s.CheckImmunity(ctx, req.ChatID, req.TelegramID)
	if err != nil {
		return nil, err
	}
	switch immunity {
	case ImmunityProtected:
		logger.Debug("Skipping auto-mute for protected account")
		return &AutoMuteOutcome{Action: AutoMuteSkipped}, nil
	case ImmunityAdmin:
		logger.Info("Admin tripped an evasion trigger, notifying only")
		return &AutoMuteOutcome{Action: AutoMuteAdminNotified}, nil
	}

	if err := s.deleter.DeleteMessage(ctx, req.ChatID, req.MessageID); err != nil {
		logger.WithError(err).Warn("Failed to delete offending message")
	}

	if err := s.logAttempt(ctx, req); err != nil {
		logger.WithError(err).Error("Failed to log whining attempt")
	}

	until := s.now().Add(s.settings.MuteDuration)
	if err := s.restrictor.RestrictMember(ctx, req.ChatID, req.TelegramID, until); err != nil {
		logger.WithError(err).Error("Failed to restrict member")
		return &AutoMuteOutcome{Action: AutoMuteRestrictFailed}, nil
	}

	warn, err := s.Warn(ctx, WarnRequest{
		ChatID:      req.ChatID,
		TelegramID:  req.TelegramID,
		DisplayName: req.DisplayName,
		Reason:      req.Trigger,
	})
	if err != nil {
		return nil, fmt.Errorf("member muted but warning failed: %w", err)
	}

	return &AutoMuteOutcome{
		Action:     AutoMuteApplied,
		MutedUntil: until,
		Warn:       warn,
	}, nil
}

func (s *moderationService) logAttempt(ctx context.Context, req AutoMuteRequest) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	attempt := &models.WhiningAttempt{
		TelegramID:   req.TelegramID,
		DisplayName:  req.DisplayName,
		Trigger:      req.Trigger,
		OriginalText: models.TruncateText(req.Text),
	}
	if err := uow.WhiningAttemptRepository().Append(ctx, attempt); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WhiningAttemptEvent{
		TelegramID: req.TelegramID,
		Trigger:    req.Trigger,
	})

	return uow.Commit()
}

// RecentWhining returns the newest logged attempts
func (s *moderationService) RecentWhining(ctx context.Context, limit int) ([]*models.WhiningAttempt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	attempts, err := uow.WhiningAttemptRepository().Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load whining attempts: %w", err)
	}
	return attempts, nil
}

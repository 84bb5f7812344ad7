package service

import (
	"context"
	"time"

	"socialmap/events"
	"socialmap/geocoding"
	"socialmap/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByUID retrieves a user by their identity-provider id
	GetByUID(ctx context.Context, uid string) (*models.User, error)

	// GetByTelegramID retrieves the user linked to a chat account
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// GetByTelegramIDsForUpdate locks the linked users in telegram id order
	GetByTelegramIDsForUpdate(ctx context.Context, telegramIDs ...int64) ([]*models.User, error)

	// Create creates a new user with the starting credits
	Create(ctx context.Context, uid, displayName string, initialCredits int64) (*models.User, error)

	// UpdateCredits sets a user's credits
	UpdateCredits(ctx context.Context, uid string, credits int64) error

	// UpdateAvatar stores the hosted avatar url
	UpdateAvatar(ctx context.Context, uid, avatarURL string) error

	// SetLinkCode stores a one-time code for binding a chat account
	SetLinkCode(ctx context.Context, uid, code string, expiresAt time.Time) error

	// GetByLinkCode returns the owner of a code that has not expired at now
	GetByLinkCode(ctx context.Context, code string, now time.Time) (*models.User, error)

	// LinkTelegram binds a chat account and clears the link code
	LinkTelegram(ctx context.Context, uid string, telegramID int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the latest entries for a user
	GetByUser(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error)
}

// DuelRepository stores resolved duels
type DuelRepository interface {
	Create(ctx context.Context, duel *models.Duel) error
}

// DuelOfferStore keeps pending duel offers until someone accepts them or they expire
type DuelOfferStore interface {
	// Save stores an offer for ttl
	Save(ctx context.Context, offer *models.DuelOffer, ttl time.Duration) error

	// Get returns the offer without consuming it, or nil when absent
	Get(ctx context.Context, offerID string) (*models.DuelOffer, error)

	// Claim atomically removes and returns the offer; only one caller ever receives it
	Claim(ctx context.Context, offerID string) (*models.DuelOffer, error)
}

// LocationRepository defines the interface for map pin storage
type LocationRepository interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.LocationPin, error)
	Create(ctx context.Context, pin *models.LocationPin) error
	Update(ctx context.Context, pin *models.LocationPin) error

	// DeleteByOwner reports whether a pin existed
	DeleteByOwner(ctx context.Context, ownerID string) (bool, error)

	GetAll(ctx context.Context) ([]*models.LocationPin, error)
}

// ModerationRepository defines the interface for warn counters
type ModerationRepository interface {
	// IncrementWarn atomically creates or bumps the record and returns the new count
	IncrementWarn(ctx context.Context, telegramID int64, displayName, reason string, at time.Time) (int, error)

	// GetForUpdate returns the locked record, or nil when the user has no record
	GetForUpdate(ctx context.Context, telegramID int64) (*models.ModerationRecord, error)

	// SetWarnCount persists a decremented counter
	SetWarnCount(ctx context.Context, telegramID int64, warnCount int) error

	Delete(ctx context.Context, telegramID int64) error
}

// WhiningAttemptRepository is the append-only log of caught evasion attempts
type WhiningAttemptRepository interface {
	Append(ctx context.Context, attempt *models.WhiningAttempt) error
	Recent(ctx context.Context, limit int) ([]*models.WhiningAttempt, error)
}

// ChatSettingsRepository defines the interface for per-chat flags
type ChatSettingsRepository interface {
	// Get returns the settings, or nil when the chat was never configured
	Get(ctx context.Context, chatID int64) (*models.ChatSettings, error)
	SetLockdown(ctx context.Context, chatID int64, lockdown bool) error
}

// StatsRepository aggregates community-wide numbers
type StatsRepository interface {
	GetEconomyStats(ctx context.Context) (*models.EconomyStats, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	DuelRepository() DuelRepository
	LocationRepository() LocationRepository
	ModerationRepository() ModerationRepository
	WhiningAttemptRepository() WhiningAttemptRepository
	ChatSettingsRepository() ChatSettingsRepository
	StatsRepository() StatsRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Chat capabilities the services drive. The Telegram adapter implements all of them.

// MessageDeleter removes a chat message
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// MemberRestrictor takes away or restores a member's right to post
type MemberRestrictor interface {
	RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error
	UnrestrictMember(ctx context.Context, chatID, userID int64) error
}

// MemberBanner removes a member from the chat
type MemberBanner interface {
	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
}

// AdminChecker reports whether a member administers the chat
type AdminChecker interface {
	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// PlaceResolver turns raw coordinates into a named place centroid
type PlaceResolver interface {
	Resolve(ctx context.Context, lat, lng float64) (*geocoding.Place, error)
}

// MediaUploader hosts an uploaded asset and returns its public url
type MediaUploader interface {
	UploadDataURL(ctx context.Context, dataURL, folder, publicID string) (string, error)
}

// UserService defines the interface for profile operations
type UserService interface {
	// GetOrCreateUser retrieves an existing profile or creates one with the starting credits
	GetOrCreateUser(ctx context.Context, uid, displayName string) (*models.User, error)

	// GetByTelegramID returns the profile linked to a chat account, or ErrAccountNotLinked
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// GetBalanceHistory returns the newest credit changes first
	GetBalanceHistory(ctx context.Context, uid string, limit int) ([]*models.BalanceHistory, error)
}

// ModerationService defines the warn/mute/ban state machine
type ModerationService interface {
	Warn(ctx context.Context, req WarnRequest) (*WarnOutcome, error)
	Unwarn(ctx context.Context, telegramID int64) (*UnwarnOutcome, error)
	AutoMute(ctx context.Context, req AutoMuteRequest) (*AutoMuteOutcome, error)
	CheckImmunity(ctx context.Context, chatID, userID int64) (Immunity, error)
	RecentWhining(ctx context.Context, limit int) ([]*models.WhiningAttempt, error)
}

// DuelService defines the duel minigame
type DuelService interface {
	Offer(ctx context.Context, chatID, initiatorTelegramID int64, initiatorName string, bet int64) (*models.DuelOffer, error)
	Accept(ctx context.Context, offerID string, acceptorTelegramID int64) (*models.DuelOffer, *models.DuelResult, error)
	Resolve(ctx context.Context, chatID, initiatorTelegramID, acceptorTelegramID, bet int64) (*models.DuelResult, error)
}

// LocationService defines the map pin registry
type LocationService interface {
	SetLocation(ctx context.Context, ownerID string, lat, lng float64) (*models.LocationPin, error)
	Upsert(ctx context.Context, ownerID, placeName string, lat, lng float64) (*models.LocationPin, error)
	Remove(ctx context.Context, ownerID string) (bool, error)
	List(ctx context.Context) ([]*models.LocationPin, error)
}

// LinkService binds web profiles to chat accounts
type LinkService interface {
	IssueCode(ctx context.Context, uid string) (*models.LinkCode, error)
	Link(ctx context.Context, code string, telegramID int64) (*models.User, error)
}

// ChatSettingsService defines per-chat lockdown handling
type ChatSettingsService interface {
	IsLockdown(ctx context.Context, chatID int64) (bool, error)
	SetLockdown(ctx context.Context, chatID int64, lockdown bool) error
}

// StatsService defines the interface for statistics operations
type StatsService interface {
	GetEconomyStats(ctx context.Context) (*models.EconomyStats, error)
}

// AvatarService uploads profile pictures
type AvatarService interface {
	UploadAvatar(ctx context.Context, uid, dataURL string) (string, error)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"socialmap/database"
	"socialmap/events"
	"socialmap/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	userRepo           service.UserRepository
	balanceHistoryRepo service.BalanceHistoryRepository
	duelRepo           service.DuelRepository
	locationRepo       service.LocationRepository
	moderationRepo     service.ModerationRepository
	whiningRepo        service.WhiningAttemptRepository
	chatSettingsRepo   service.ChatSettingsRepository
	statsRepo          service.StatsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepositoryWithTx(tx)
	u.duelRepo = newDuelRepositoryWithTx(tx)
	u.locationRepo = newLocationRepositoryWithTx(tx)
	u.moderationRepo = newModerationRepositoryWithTx(tx)
	u.whiningRepo = newWhiningAttemptRepositoryWithTx(tx)
	u.chatSettingsRepo = newChatSettingsRepositoryWithTx(tx)
	u.statsRepo = newStatsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Events only leave the unit of work once the data they describe is durable
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistoryRepo
}

func (u *unitOfWork) DuelRepository() service.DuelRepository {
	if u.duelRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.duelRepo
}

func (u *unitOfWork) LocationRepository() service.LocationRepository {
	if u.locationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.locationRepo
}

func (u *unitOfWork) ModerationRepository() service.ModerationRepository {
	if u.moderationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.moderationRepo
}

func (u *unitOfWork) WhiningAttemptRepository() service.WhiningAttemptRepository {
	if u.whiningRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.whiningRepo
}

func (u *unitOfWork) ChatSettingsRepository() service.ChatSettingsRepository {
	if u.chatSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.chatSettingsRepo
}

func (u *unitOfWork) StatsRepository() service.StatsRepository {
	if u.statsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.statsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"socialmap/database"
	"socialmap/events"
	"socialmap/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DuelOfferTTL is how long a challenge waits for someone to accept
const DuelOfferTTL = 10 * time.Minute

// DuelSettings configures the duel economy
type DuelSettings struct {
	MinBet     int64
	MaxBet     int64
	TaxPercent int64
}

// duelService implements the DuelService interface
type duelService struct {
	uowFactory UnitOfWorkFactory
	offers     DuelOfferStore
	settings   DuelSettings

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewDuelService creates a new duel service. rng flips the coin; seed it in tests.
func NewDuelService(uowFactory UnitOfWorkFactory, offers DuelOfferStore, settings DuelSettings, rng *rand.Rand) DuelService {
	return &duelService{
		uowFactory: uowFactory,
		offers:     offers,
		settings:   settings,
		rng:        rng,
	}
}

// DuelTax returns the burned share of a pot
func DuelTax(pot, taxPercent int64) int64 {
	return pot * taxPercent / 100
}

func (s *duelService) validateBet(bet int64) error {
	if bet < s.settings.MinBet || bet > s.settings.MaxBet {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBetOutOfRange, bet, s.settings.MinBet, s.settings.MaxBet)
	}
	return nil
}

// Offer posts a challenge. The initiator's balance is checked here optimistically
// and again when the duel resolves.
func (s *duelService) Offer(ctx context.Context, chatID, initiatorTelegramID int64, initiatorName string, bet int64) (*models.DuelOffer, error) {
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	initiator, err := s.getLinked(ctx, initiatorTelegramID)
	if err != nil {
		return nil, err
	}
	if initiator.Credits < bet {
		return nil, ErrInitiatorInsufficientFunds
	}

	offer := &models.DuelOffer{
		ID:                  uuid.NewString(),
		ChatID:              chatID,
		InitiatorTelegramID: initiatorTelegramID,
		InitiatorName:       initiatorName,
		Bet:                 bet,
		CreatedAt:           time.Now(),
	}
	if err := s.offers.Save(ctx, offer, DuelOfferTTL); err != nil {
		return nil, fmt.Errorf("failed to save duel offer: %w", err)
	}

	log.WithFields(log.Fields{
		"chatID":    chatID,
		"initiator": initiatorTelegramID,
		"bet":       bet,
		"offerID":   offer.ID,
	}).Info("Duel offered")

	return offer, nil
}

// Accept claims an offer and resolves it. Only one of several concurrent presses
// gets the offer; the others see ErrDuelOfferNotFound.
func (s *duelService) Accept(ctx context.Context, offerID string, acceptorTelegramID int64) (*models.DuelOffer, *models.DuelResult, error) {
	offer, err := s.offers.Get(ctx, offerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load duel offer: %w", err)
	}
	if offer == nil {
		return nil, nil, ErrDuelOfferNotFound
	}
	if offer.InitiatorTelegramID == acceptorTelegramID {
		return offer, nil, ErrSelfDuel
	}

	acceptor, err := s.getLinked(ctx, acceptorTelegramID)
	if err != nil {
		return offer, nil, err
	}
	if acceptor.Credits < offer.Bet {
		return offer, nil, ErrAcceptorInsufficientFunds
	}

	claimed, err := s.offers.Claim(ctx, offerID)
	if err != nil {
		return offer, nil, fmt.Errorf("failed to claim duel offer: %w", err)
	}
	if claimed == nil {
		return offer, nil, ErrDuelOfferNotFound
	}

	result, err := s.Resolve(ctx, claimed.ChatID, claimed.InitiatorTelegramID, acceptorTelegramID, claimed.Bet)
	if err != nil {
		// An initiator who can no longer cover the bet ends the offer for everyone
		if !errors.Is(err, ErrInitiatorInsufficientFunds) {
			s.restoreOffer(ctx, claimed)
		}
		return claimed, nil, err
	}
	return claimed, result, nil
}

// restoreOffer puts a claimed offer back for whatever is left of its lifetime
func (s *duelService) restoreOffer(ctx context.Context, offer *models.DuelOffer) {
	remaining := time.Until(offer.CreatedAt.Add(DuelOfferTTL))
	if remaining <= 0 {
		return
	}
	if err := s.offers.Save(ctx, offer, remaining); err != nil {
		log.WithFields(log.Fields{
			"offerID": offer.ID,
			"error":   err,
		}).Warn("Failed to restore duel offer")
	}
}

// Resolve settles a duel in one transaction: both balances are locked, re-checked,
// and both new balances are written together or not at all.
func (s *duelService) Resolve(ctx context.Context, chatID, initiatorTelegramID, acceptorTelegramID, bet int64) (*models.DuelResult, error) {
	if initiatorTelegramID == acceptorTelegramID {
		return nil, ErrSelfDuel
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	var result *models.DuelResult
	err := database.WithRetry(ctx, database.DefaultTxAttempts, func(ctx context.Context) error {
		var err error
		result, err = s.resolveOnce(ctx, chatID, initiatorTelegramID, acceptorTelegramID, bet)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"chatID": chatID,
		"winner": result.WinnerTelegramID,
		"loser":  result.LoserTelegramID,
		"bet":    bet,
		"tax":    result.Tax,
	}).Info("Duel resolved")

	return result, nil
}

func (s *duelService) resolveOnce(ctx context.Context, chatID, initiatorTelegramID, acceptorTelegramID, bet int64) (*models.DuelResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetByTelegramIDsForUpdate(ctx, initiatorTelegramID, acceptorTelegramID)
	if err != nil {
		return nil, err
	}

	var initiator, acceptor *models.User
	for _, u := range users {
		switch {
		case u.TelegramID == nil:
		case *u.TelegramID == initiatorTelegramID:
			initiator = u
		case *u.TelegramID == acceptorTelegramID:
			acceptor = u
		}
	}
	if initiator == nil || acceptor == nil {
		return nil, ErrAccountNotLinked
	}
	if initiator.Credits < bet {
		return nil, ErrInitiatorInsufficientFunds
	}
	if acceptor.Credits < bet {
		return nil, ErrAcceptorInsufficientFunds
	}

	winner, loser := initiator, acceptor
	if !s.initiatorWins() {
		winner, loser = acceptor, initiator
	}

	pot := bet * 2
	tax := DuelTax(pot, s.settings.TaxPercent)
	payout := pot - tax

	winnerBalance := winner.Credits - bet + payout
	loserBalance := loser.Credits - bet

	metadata := map[string]any{
		"chat_id":  chatID,
		"opponent": *loser.TelegramID,
		"bet":      bet,
		"tax":      tax,
	}
	if err := s.applyBalance(ctx, uow, winner, winnerBalance, models.TransactionTypeDuelWin, metadata); err != nil {
		return nil, err
	}
	loserMetadata := map[string]any{
		"chat_id":  chatID,
		"opponent": *winner.TelegramID,
		"bet":      bet,
		"tax":      tax,
	}
	if err := s.applyBalance(ctx, uow, loser, loserBalance, models.TransactionTypeDuelLoss, loserMetadata); err != nil {
		return nil, err
	}

	duel := &models.Duel{
		ChatID:              chatID,
		InitiatorTelegramID: initiatorTelegramID,
		AcceptorTelegramID:  acceptorTelegramID,
		WinnerTelegramID:    *winner.TelegramID,
		Bet:                 bet,
		Tax:                 tax,
	}
	if err := uow.DuelRepository().Create(ctx, duel); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.DuelResolvedEvent{
		ChatID:   chatID,
		WinnerID: *winner.TelegramID,
		LoserID:  *loser.TelegramID,
		Bet:      bet,
		Tax:      tax,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DuelResult{
		WinnerTelegramID: *winner.TelegramID,
		LoserTelegramID:  *loser.TelegramID,
		Bet:              bet,
		Pot:              pot,
		Tax:              tax,
		Payout:           payout,
		WinnerBalance:    winnerBalance,
		LoserBalance:     loserBalance,
	}, nil
}

func (s *duelService) applyBalance(ctx context.Context, uow UnitOfWork, user *models.User, newBalance int64, txType models.TransactionType, metadata map[string]any) error {
	if err := uow.UserRepository().UpdateCredits(ctx, user.UID, newBalance); err != nil {
		return err
	}
	return RecordBalanceChange(ctx, uow, &models.BalanceHistory{
		UID:                 user.UID,
		BalanceBefore:       user.Credits,
		BalanceAfter:        newBalance,
		ChangeAmount:        newBalance - user.Credits,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	})
}

func (s *duelService) initiatorWins() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(2) == 0
}

func (s *duelService) getLinked(ctx context.Context, telegramID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotLinked
	}
	return user, nil
}

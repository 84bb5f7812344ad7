package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"socialmap/events"
	"socialmap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testDuelSettings = DuelSettings{MinBet: 10, MaxBet: 10000, TaxPercent: 10}

type duelFixture struct {
	mocks  *TestMocks
	users  *memoryUserRepo
	offers *memoryOfferStore
	svc    DuelService
}

func newDuelFixture(t *testing.T, seed int64) *duelFixture {
	t.Helper()
	m := NewTestMocks()
	m.ExpectTransaction()

	users := newMemoryUserRepo()
	users.add("initiator", TestInitiatorID, TestStartCredits)
	users.add("acceptor", TestAcceptorID, TestStartCredits)
	users.add("unlinked", 0, TestStartCredits)
	m.UoW.UserRepo = users

	m.BalanceHistory.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.DuelRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	offers := newMemoryOfferStore()
	return &duelFixture{
		mocks:  m,
		users:  users,
		offers: offers,
		svc:    NewDuelService(m.Factory, offers, testDuelSettings, rand.New(rand.NewSource(seed))),
	}
}

func TestDuelTax(t *testing.T) {
	tests := []struct {
		pot, percent, want int64
	}{
		{200, 10, 20},
		{20, 10, 2},
		{25, 10, 2},
		{19, 10, 1},
		{9, 10, 0},
		{200, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DuelTax(tt.pot, tt.percent), "pot=%d percent=%d", tt.pot, tt.percent)
	}
}

func TestDuelService_ResolveConservesCreditsMinusTax(t *testing.T) {
	ctx := context.Background()

	for seed := int64(1); seed <= 20; seed++ {
		f := newDuelFixture(t, seed)
		bet := int64(10 + seed*37)
		before := f.users.credits("initiator") + f.users.credits("acceptor")

		result, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, bet)
		require.NoError(t, err)

		after := f.users.credits("initiator") + f.users.credits("acceptor")
		assert.Equal(t, before-result.Tax, after, "seed %d", seed)
		assert.Equal(t, DuelTax(2*bet, testDuelSettings.TaxPercent), result.Tax)
		assert.Equal(t, 2*bet-result.Tax, result.Payout)
		assert.ElementsMatch(t, []int64{TestInitiatorID, TestAcceptorID},
			[]int64{result.WinnerTelegramID, result.LoserTelegramID})

		winnerUID := "initiator"
		if result.WinnerTelegramID == TestAcceptorID {
			winnerUID = "acceptor"
		}
		loserUID := "acceptor"
		if winnerUID == "acceptor" {
			loserUID = "initiator"
		}
		assert.Equal(t, result.WinnerBalance, f.users.credits(winnerUID))
		assert.Equal(t, result.LoserBalance, f.users.credits(loserUID))
		assert.Equal(t, TestStartCredits-bet, result.LoserBalance)
		assert.Equal(t, TestStartCredits-bet+result.Payout, result.WinnerBalance)
	}
}

func TestDuelService_ResolveRecordsHistoryAndEvent(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 7)

	result, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, 100)
	require.NoError(t, err)

	f.mocks.BalanceHistory.AssertNumberOfCalls(t, "Record", 2)
	f.mocks.DuelRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(d *models.Duel) bool {
		return d.ChatID == TestChatID &&
			d.InitiatorTelegramID == TestInitiatorID &&
			d.AcceptorTelegramID == TestAcceptorID &&
			d.WinnerTelegramID == result.WinnerTelegramID &&
			d.Bet == 100 &&
			d.Tax == 20
	}))
	f.mocks.UoW.AssertCalled(t, "Commit")
	assert.Equal(t, []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeBalanceChange,
		events.EventTypeDuelResolved,
	}, f.mocks.Publisher.Types())
}

func TestDuelService_ResolveRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("initiator short of credits", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		f.users.add("initiator", TestInitiatorID, 50)

		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, 100)
		assert.ErrorIs(t, err, ErrInitiatorInsufficientFunds)
		assert.Equal(t, int64(50), f.users.credits("initiator"))
		assert.Equal(t, TestStartCredits, f.users.credits("acceptor"))
		f.mocks.BalanceHistory.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		f.mocks.UoW.AssertNotCalled(t, "Commit")
	})

	t.Run("acceptor short of credits", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		f.users.add("acceptor", TestAcceptorID, 99)

		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, 100)
		assert.ErrorIs(t, err, ErrAcceptorInsufficientFunds)
		assert.Equal(t, TestStartCredits, f.users.credits("initiator"))
		assert.Equal(t, int64(99), f.users.credits("acceptor"))
	})

	t.Run("exact balance is enough", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		f.users.add("acceptor", TestAcceptorID, 100)

		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, 100)
		assert.NoError(t, err)
	})

	t.Run("self duel", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestInitiatorID, 100)
		assert.ErrorIs(t, err, ErrSelfDuel)
	})

	t.Run("bet out of range", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		for _, bet := range []int64{0, 9, 10001, -5} {
			_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, bet)
			assert.ErrorIs(t, err, ErrBetOutOfRange, "bet %d", bet)
		}
	})

	t.Run("acceptor not linked", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestTargetID, 100)
		assert.ErrorIs(t, err, ErrAccountNotLinked)
	})

	t.Run("write failure commits nothing", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		f.users.updateErr = errors.New("disk full")

		_, err := f.svc.Resolve(ctx, TestChatID, TestInitiatorID, TestAcceptorID, 100)
		assert.Error(t, err)
		f.mocks.UoW.AssertNotCalled(t, "Commit")
		assert.Empty(t, f.mocks.Publisher.Types())
	})
}

func TestDuelService_Offer(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the offer", func(t *testing.T) {
		f := newDuelFixture(t, 1)

		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 250)
		require.NoError(t, err)
		assert.NotEmpty(t, offer.ID)
		assert.Equal(t, int64(250), offer.Bet)

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, TestInitiatorID, stored.InitiatorTelegramID)
		assert.Equal(t, "Alice", stored.InitiatorName)
	})

	t.Run("unlinked initiator", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		_, err := f.svc.Offer(ctx, TestChatID, TestTargetID, "Nobody", 100)
		assert.ErrorIs(t, err, ErrAccountNotLinked)
		assert.Zero(t, f.offers.saves)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		_, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", TestStartCredits+1)
		assert.ErrorIs(t, err, ErrInitiatorInsufficientFunds)
		assert.Zero(t, f.offers.saves)
	})

	t.Run("bet out of range", func(t *testing.T) {
		f := newDuelFixture(t, 1)
		_, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 5)
		assert.ErrorIs(t, err, ErrBetOutOfRange)
	})
}

func TestDuelService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves once", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)

		_, result, err := f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		require.NoError(t, err)
		require.NotNil(t, result)

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.ErrorIs(t, err, ErrDuelOfferNotFound)
	})

	t.Run("self accept keeps the offer", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)

		_, _, err = f.svc.Accept(ctx, offer.ID, TestInitiatorID)
		assert.ErrorIs(t, err, ErrSelfDuel)

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})

	t.Run("poor acceptor keeps the offer", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 500)
		require.NoError(t, err)
		f.users.add("acceptor", TestAcceptorID, 10)

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.ErrorIs(t, err, ErrAcceptorInsufficientFunds)

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})

	t.Run("initiator spent credits meanwhile", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 500)
		require.NoError(t, err)
		f.users.add("initiator", TestInitiatorID, 100)

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.ErrorIs(t, err, ErrInitiatorInsufficientFunds)
		assert.Equal(t, int64(100), f.users.credits("initiator"))
		assert.Equal(t, TestStartCredits, f.users.credits("acceptor"))

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("store failure restores the offer", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)
		f.users.updateErr = errors.New("disk full")

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.Error(t, err)

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
		assert.Equal(t, TestStartCredits, f.users.credits("initiator"))
		assert.Equal(t, TestStartCredits, f.users.credits("acceptor"))
	})

	t.Run("restored offer keeps its remaining lifetime", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)
		aged := *offer
		aged.CreatedAt = time.Now().Add(-DuelOfferTTL + time.Minute)
		require.NoError(t, f.offers.Save(ctx, &aged, DuelOfferTTL))
		f.users.updateErr = errors.New("disk full")

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.Error(t, err)

		assert.Greater(t, f.offers.lastTTL, time.Duration(0))
		assert.LessOrEqual(t, f.offers.lastTTL, time.Minute)
	})

	t.Run("expired offer is not restored", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)
		stale := *offer
		stale.CreatedAt = time.Now().Add(-DuelOfferTTL - time.Second)
		require.NoError(t, f.offers.Save(ctx, &stale, DuelOfferTTL))
		f.users.updateErr = errors.New("disk full")

		_, _, err = f.svc.Accept(ctx, offer.ID, TestAcceptorID)
		assert.Error(t, err)

		stored, err := f.offers.Get(ctx, offer.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("unknown offer", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		_, _, err := f.svc.Accept(ctx, "missing", TestAcceptorID)
		assert.ErrorIs(t, err, ErrDuelOfferNotFound)
	})

	t.Run("concurrent presses resolve once", func(t *testing.T) {
		f := newDuelFixture(t, 3)
		offer, err := f.svc.Offer(ctx, TestChatID, TestInitiatorID, "Alice", 100)
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			resolved int
			notFound int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, result, err := f.svc.Accept(ctx, offer.ID, TestAcceptorID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil && result != nil:
					resolved++
				case errors.Is(err, ErrDuelOfferNotFound):
					notFound++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, resolved)
		assert.Equal(t, 7, notFound)
		total := f.users.credits("initiator") + f.users.credits("acceptor")
		assert.Equal(t, 2*TestStartCredits-20, total)
	})
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialmap/events"
	"socialmap/geocoding"

	"github.com/stretchr/testify/mock"
)

// Test IDs
const (
	TestChatID       = int64(-100123)
	TestInitiatorID  = int64(111111)
	TestAcceptorID   = int64(222222)
	TestTargetID     = int64(333333)
	TestAdminID      = int64(999999)
	TestImmuneID     = int64(777000)
	TestBotID        = int64(424242)
	TestChatAdminID  = int64(555555)
	TestStartCredits = int64(1000)
)

// TestMocks holds a unit of work wired to every mock repository
type TestMocks struct {
	Factory          *MockUnitOfWorkFactory
	UoW              *MockUnitOfWork
	UserRepo         *MockUserRepository
	BalanceHistory   *MockBalanceHistoryRepository
	DuelRepo         *MockDuelRepository
	LocationRepo     *MockLocationRepository
	ModerationRepo   *MockModerationRepository
	WhiningRepo      *MockWhiningAttemptRepository
	ChatSettingsRepo *MockChatSettingsRepository
	StatsRepo        *MockStatsRepository
	Publisher        *recordingPublisher
}

// NewTestMocks creates a new set of mocks. The factory hands out the same unit of
// work on every Create call.
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		Factory:          new(MockUnitOfWorkFactory),
		UserRepo:         new(MockUserRepository),
		BalanceHistory:   new(MockBalanceHistoryRepository),
		DuelRepo:         new(MockDuelRepository),
		LocationRepo:     new(MockLocationRepository),
		ModerationRepo:   new(MockModerationRepository),
		WhiningRepo:      new(MockWhiningAttemptRepository),
		ChatSettingsRepo: new(MockChatSettingsRepository),
		StatsRepo:        new(MockStatsRepository),
		Publisher:        &recordingPublisher{},
	}
	m.UoW = &MockUnitOfWork{
		UserRepo:           m.UserRepo,
		BalanceHistoryRepo: m.BalanceHistory,
		DuelRepo:           m.DuelRepo,
		LocationRepo:       m.LocationRepo,
		ModerationRepo:     m.ModerationRepo,
		WhiningRepo:        m.WhiningRepo,
		ChatSettingsRepo:   m.ChatSettingsRepo,
		StatsRepo:          m.StatsRepo,
		Publisher:          m.Publisher,
	}
	m.Factory.On("Create").Return(m.UoW)
	return m
}

// ExpectTransaction allows any number of begin/commit/rollback calls
func (m *TestMocks) ExpectTransaction() {
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Commit").Return(nil).Maybe()
	m.UoW.On("Rollback").Return(nil)
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.BalanceHistory.AssertExpectations(t)
	m.DuelRepo.AssertExpectations(t)
	m.LocationRepo.AssertExpectations(t)
	m.ModerationRepo.AssertExpectations(t)
	m.WhiningRepo.AssertExpectations(t)
	m.ChatSettingsRepo.AssertExpectations(t)
	m.StatsRepo.AssertExpectations(t)
}

// recordingPublisher keeps published events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

// fakeChat records chat administration calls
type fakeChat struct {
	mu sync.Mutex

	banErr      error
	restrictErr error
	deleteErr   error
	adminErr    error
	chatAdmins  map[int64]bool

	bans         []int64
	unbans       []int64
	restrictions []int64
	restrictedTo []time.Time
	unrestricts  []int64
	deletions    []int
	steps        []string
}

func newFakeChat() *fakeChat {
	return &fakeChat{chatAdmins: map[int64]bool{TestChatAdminID: true}}
}

func (f *fakeChat) BanMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, "ban")
	if f.banErr != nil {
		return f.banErr
	}
	f.bans = append(f.bans, userID)
	return nil
}

func (f *fakeChat) UnbanMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, userID)
	return nil
}

func (f *fakeChat) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, "restrict")
	if f.restrictErr != nil {
		return f.restrictErr
	}
	f.restrictions = append(f.restrictions, userID)
	f.restrictedTo = append(f.restrictedTo, until)
	return nil
}

func (f *fakeChat) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unrestricts = append(f.unrestricts, userID)
	return nil
}

func (f *fakeChat) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletions = append(f.deletions, messageID)
	return nil
}

func (f *fakeChat) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if f.adminErr != nil {
		return false, f.adminErr
	}
	return f.chatAdmins[userID], nil
}

// fakeResolver returns a fixed place
type fakeResolver struct {
	place *geocoding.Place
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, lat, lng float64) (*geocoding.Place, error) {
	r.calls++
	return r.place, r.err
}

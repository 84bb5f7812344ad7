package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialmap/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// memoryUserRepo is a stateful stand-in for the users table
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	codes map[string]models.LinkCode

	updateErr error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users: make(map[string]*models.User),
		codes: make(map[string]models.LinkCode),
	}
}

// add inserts a user, linked when telegramID is non-zero
func (r *memoryUserRepo) add(uid string, telegramID, credits int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{UID: uid, DisplayName: uid, Credits: credits}
	if telegramID != 0 {
		id := telegramID
		u.TelegramID = &id
	}
	r.users[uid] = u
}

func (r *memoryUserRepo) credits(uid string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[uid].Credits
}

func (r *memoryUserRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByTelegramIDsForUpdate(ctx context.Context, telegramIDs ...int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.TelegramID == nil {
			continue
		}
		for _, id := range telegramIDs {
			if *u.TelegramID == id {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].TelegramID < *out[j].TelegramID })
	return out, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, uid, displayName string, initialCredits int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[uid]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	u := &models.User{UID: uid, DisplayName: displayName, Credits: initialCredits}
	r.users[uid] = u
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) UpdateCredits(ctx context.Context, uid string, credits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.users[uid].Credits = credits
	return nil
}

func (r *memoryUserRepo) UpdateAvatar(ctx context.Context, uid, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[uid].AvatarURL = avatarURL
	return nil
}

func (r *memoryUserRepo) SetLinkCode(ctx context.Context, uid, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c, lc := range r.codes {
		if lc.UID == uid {
			delete(r.codes, c)
		}
	}
	r.codes[code] = models.LinkCode{UID: uid, Code: code, ExpiresAt: expiresAt}
	return nil
}

func (r *memoryUserRepo) GetByLinkCode(ctx context.Context, code string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lc, ok := r.codes[code]
	if !ok || !now.Before(lc.ExpiresAt) {
		return nil, nil
	}
	cp := *r.users[lc.UID]
	return &cp, nil
}

func (r *memoryUserRepo) LinkTelegram(ctx context.Context, uid string, telegramID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UID != uid && u.TelegramID != nil && *u.TelegramID == telegramID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	id := telegramID
	r.users[uid].TelegramID = &id
	for c, lc := range r.codes {
		if lc.UID == uid {
			delete(r.codes, c)
		}
	}
	return nil
}

// memoryOfferStore keeps offers in a map; Claim removes under the lock like GETDEL
type memoryOfferStore struct {
	mu      sync.Mutex
	offers  map[string]models.DuelOffer
	saves   int
	lastTTL time.Duration
}

func newMemoryOfferStore() *memoryOfferStore {
	return &memoryOfferStore{offers: make(map[string]models.DuelOffer)}
}

func (s *memoryOfferStore) Save(ctx context.Context, offer *models.DuelOffer, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[offer.ID] = *offer
	s.saves++
	s.lastTTL = ttl
	return nil
}

func (s *memoryOfferStore) Get(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *memoryOfferStore) Claim(ctx context.Context, offerID string) (*models.DuelOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerID]
	if !ok {
		return nil, nil
	}
	delete(s.offers, offerID)
	return &o, nil
}

// memoryLocationRepo is a stateful stand-in for the locations table
type memoryLocationRepo struct {
	mu     sync.Mutex
	pins   map[string]*models.LocationPin
	nextID int64
}

func newMemoryLocationRepo() *memoryLocationRepo {
	return &memoryLocationRepo{pins: make(map[string]*models.LocationPin)}
}

func (r *memoryLocationRepo) GetByOwner(ctx context.Context, ownerID string) (*models.LocationPin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pins[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryLocationRepo) Create(ctx context.Context, pin *models.LocationPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pins[pin.OwnerID]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	r.nextID++
	pin.ID = r.nextID
	cp := *pin
	r.pins[pin.OwnerID] = &cp
	return nil
}

func (r *memoryLocationRepo) Update(ctx context.Context, pin *models.LocationPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pin
	r.pins[pin.OwnerID] = &cp
	return nil
}

func (r *memoryLocationRepo) DeleteByOwner(ctx context.Context, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pins[ownerID]
	delete(r.pins, ownerID)
	return ok, nil
}

func (r *memoryLocationRepo) GetAll(ctx context.Context) ([]*models.LocationPin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LocationPin, 0, len(r.pins))
	for _, p := range r.pins {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

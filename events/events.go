package events

import (
	"context"
	"sync"

	"socialmap/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeUserWarned      EventType = "user_warned"
	EventTypeUserUnwarned    EventType = "user_unwarned"
	EventTypeUserBanned      EventType = "user_banned"
	EventTypeWhiningAttempt  EventType = "whining_attempt"
	EventTypeDuelResolved    EventType = "duel_resolved"
	EventTypeLocationUpdated EventType = "location_updated"
	EventTypeLocationRemoved EventType = "location_removed"
	EventTypeAccountLinked   EventType = "account_linked"
)

// AllEventTypes lists every event type, used by forwarders that mirror the whole bus
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeUserWarned,
	EventTypeUserUnwarned,
	EventTypeUserBanned,
	EventTypeWhiningAttempt,
	EventTypeDuelResolved,
	EventTypeLocationUpdated,
	EventTypeLocationRemoved,
	EventTypeAccountLinked,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a credit change that occurred
type BalanceChangeEvent struct {
	UID             string                 `json:"uid"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserWarnedEvent is emitted when a warning was persisted without reaching the ban threshold
type UserWarnedEvent struct {
	TelegramID int64  `json:"telegram_id"`
	WarnCount  int    `json:"warn_count"`
	MaxWarns   int    `json:"max_warns"`
	Reason     string `json:"reason"`
}

func (e UserWarnedEvent) Type() EventType {
	return EventTypeUserWarned
}

// UserUnwarnedEvent is emitted when an admin lifts a warning
type UserUnwarnedEvent struct {
	TelegramID int64 `json:"telegram_id"`
	WarnCount  int   `json:"warn_count"`
}

func (e UserUnwarnedEvent) Type() EventType {
	return EventTypeUserUnwarned
}

// UserBannedEvent is emitted when accumulated warnings turned into a ban
type UserBannedEvent struct {
	ChatID     int64  `json:"chat_id"`
	TelegramID int64  `json:"telegram_id"`
	Reason     string `json:"reason"`
}

func (e UserBannedEvent) Type() EventType {
	return EventTypeUserBanned
}

// WhiningAttemptEvent mirrors an entry appended to the whining log
type WhiningAttemptEvent struct {
	TelegramID int64  `json:"telegram_id"`
	Trigger    string `json:"trigger"`
}

func (e WhiningAttemptEvent) Type() EventType {
	return EventTypeWhiningAttempt
}

// DuelResolvedEvent represents a settled duel
type DuelResolvedEvent struct {
	ChatID   int64 `json:"chat_id"`
	WinnerID int64 `json:"winner_telegram_id"`
	LoserID  int64 `json:"loser_telegram_id"`
	Bet      int64 `json:"bet"`
	Tax      int64 `json:"tax"`
}

func (e DuelResolvedEvent) Type() EventType {
	return EventTypeDuelResolved
}

// LocationUpdatedEvent represents a created or moved map pin
type LocationUpdatedEvent struct {
	OwnerID   string  `json:"owner_id"`
	PlaceName string  `json:"place_name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Created   bool    `json:"created"`
}

func (e LocationUpdatedEvent) Type() EventType {
	return EventTypeLocationUpdated
}

// LocationRemovedEvent represents a deleted map pin
type LocationRemovedEvent struct {
	OwnerID string `json:"owner_id"`
}

func (e LocationRemovedEvent) Type() EventType {
	return EventTypeLocationRemoved
}

// AccountLinkedEvent is emitted when a web profile gets bound to a chat account
type AccountLinkedEvent struct {
	UID        string `json:"uid"`
	TelegramID int64  `json:"telegram_id"`
}

func (e AccountLinkedEvent) Type() EventType {
	return EventTypeAccountLinked
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so a slow subscriber never blocks a chat update
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Detached from the request context: handlers outlive the transaction
	eventCtx := context.Background()

	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(eventCtx, ev)
		}
	}
	log.WithField("count", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

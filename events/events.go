package events

import (
	"context"
	"sync"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeVoteChanged        EventType = "vote_changed"
	EventTypeSubscriptionLapsed EventType = "subscription_lapsed"
	EventTypeRealEstateChanged  EventType = "real_estate_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	GuildID         int64
	OldBalance      models.Bobux
	NewBalance      models.Bobux
	TransactionType models.TransactionType
	ChangeAmount    models.Bobux
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// VoteChangedEvent represents a member's vote on a message moving between directions
type VoteChangedEvent struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	PosterID  int64
	VoterID   int64
	OldVote   models.Vote
	NewVote   models.Vote
}

func (e VoteChangedEvent) Type() EventType {
	return EventTypeVoteChanged
}

// SubscriptionLapsedEvent is emitted when a member could not pay for a subscription
type SubscriptionLapsedEvent struct {
	GuildID  int64
	MemberID int64
	RoleID   int64
	Price    models.Bobux
}

func (e SubscriptionLapsedEvent) Type() EventType {
	return EventTypeSubscriptionLapsed
}

// RealEstateChangedEvent is emitted when a channel is bought or sold
type RealEstateChangedEvent struct {
	GuildID   int64
	ChannelID int64
	OwnerID   int64
	Kind      models.ChannelKind
	Sold      bool
}

func (e RealEstateChangedEvent) Type() EventType {
	return EventTypeRealEstateChanged
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

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never blocks a commit
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

// TransactionalBus holds events raised inside a unit of work until it commits.
// A bus created with a parent hands its events to the parent instead of the real bus,
// so events from a savepoint only escape once the outermost transaction commits.
type TransactionalBus struct {
	real    *Bus
	parent  *TransactionalBus
	pending []Event
}

// NewTransactionalBus creates a bus that flushes to the real bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// NewNestedTransactionalBus creates a bus that flushes into a parent bus
func NewNestedTransactionalBus(parent *TransactionalBus) *TransactionalBus {
	return &TransactionalBus{real: parent.real, parent: parent}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of stashed events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit or savepoint release
func (b *TransactionalBus) Flush(ctx context.Context) error {
	pending := b.pending
	b.pending = nil

	if b.parent != nil {
		b.parent.pending = append(b.parent.pending, pending...)
		return nil
	}

	log.WithFields(log.Fields{
		"pendingEventCount": len(pending),
	}).Debug("Flushing pending events to main event bus")

	if b.real == nil {
		return nil
	}

	// Handlers outlive the transaction context
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range pending {
		b.real.Emit(eventCtx, ev)
	}
	return nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

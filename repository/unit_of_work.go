package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface. A nested unit wraps a savepoint of its
// parent's transaction.
type unitOfWork struct {
	db                   *database.DB
	tx                   pgx.Tx
	ctx                  context.Context
	guildID              int64
	depth                int
	transactionalBus     *events.TransactionalBus
	memberRepo           service.MemberRepository
	balanceHistoryRepo   service.BalanceHistoryRepository
	voteRepo             service.VoteRepository
	guildSettingsRepo    service.GuildSettingsRepository
	webhookRepo          service.WebhookRepository
	subscriptionRepo     service.SubscriptionRepository
	purchasedChannelRepo service.PurchasedChannelRepository
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

// CreateForGuild creates a new UnitOfWork scoped to a guild
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		guildID:          guildID,
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

	u.attach(ctx, tx)
	return nil
}

// attach creates guild-scoped repositories on tx
func (u *unitOfWork) attach(ctx context.Context, tx pgx.Tx) {
	u.tx = tx
	u.ctx = ctx

	u.memberRepo = newMemberRepository(tx, u.guildID)
	u.balanceHistoryRepo = newBalanceHistoryRepository(tx, u.guildID)
	u.voteRepo = newVoteRepository(tx, u.guildID)
	u.guildSettingsRepo = newGuildSettingsRepositoryWithTx(tx)
	u.webhookRepo = newWebhookRepository(tx)
	u.subscriptionRepo = newSubscriptionRepository(tx, u.guildID)
	u.purchasedChannelRepo = newPurchasedChannelRepository(tx, u.guildID)
}

// Nested opens a savepoint. The returned unit is already started.
func (u *unitOfWork) Nested(ctx context.Context) (service.UnitOfWork, error) {
	if u.tx == nil {
		return nil, fmt.Errorf("unit of work not started - call Begin() first")
	}

	savepoint, err := u.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create savepoint at depth %d: %w", u.depth+1, err)
	}

	child := &unitOfWork{
		db:               u.db,
		guildID:          u.guildID,
		depth:            u.depth + 1,
		transactionalBus: events.NewNestedTransactionalBus(u.transactionalBus),
	}
	child.attach(ctx, savepoint)

	return child, nil
}

// Commit commits the transaction or releases the savepoint
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction at depth %d: %w", u.depth, err)
	}

	u.tx = nil

	// Nested units hand their events to the parent; the outermost unit emits them
	return u.transactionalBus.Flush(u.ctx)
}

// Rollback rolls back the transaction or rolls back to the savepoint
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction at depth %d: %w", u.depth, err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

// Depth is 0 for the outermost unit
func (u *unitOfWork) Depth() int {
	return u.depth
}

// GuildID returns the guild this unit is scoped to
func (u *unitOfWork) GuildID() int64 {
	return u.guildID
}

// MemberRepository returns the member repository for this unit of work
func (u *unitOfWork) MemberRepository() service.MemberRepository {
	if u.memberRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.memberRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistoryRepo
}

// VoteRepository returns the vote repository for this unit of work
func (u *unitOfWork) VoteRepository() service.VoteRepository {
	if u.voteRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.voteRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() service.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}

// WebhookRepository returns the webhook repository for this unit of work
func (u *unitOfWork) WebhookRepository() service.WebhookRepository {
	if u.webhookRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.webhookRepo
}

// SubscriptionRepository returns the subscription repository for this unit of work
func (u *unitOfWork) SubscriptionRepository() service.SubscriptionRepository {
	if u.subscriptionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.subscriptionRepo
}

// PurchasedChannelRepository returns the purchased channel repository for this unit of work
func (u *unitOfWork) PurchasedChannelRepository() service.PurchasedChannelRepository {
	if u.purchasedChannelRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.purchasedChannelRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}

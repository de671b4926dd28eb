package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
)

// RecordBalanceChange records a balance history entry and publishes the matching event.
// Every ledger write goes through here.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed once the outermost unit of work commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		GuildID:         uow.GuildID(),
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

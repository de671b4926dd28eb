package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// CreateTransaction moves an amount out of the source account and into the destination
// account inside a savepoint of uow. A nil source mints the amount and a nil destination
// burns it. Either both legs are written or neither is.
func CreateTransaction(ctx context.Context, uow UnitOfWork, t models.Transaction) error {
	if t.Amount.IsNegative() {
		return &NegativeAmountError{}
	}
	if t.Source == nil && t.Destination == nil {
		return nil
	}
	for _, account := range []*models.Account{t.Source, t.Destination} {
		if account != nil && account.GuildID != uow.GuildID() {
			return fmt.Errorf("account %s is outside guild %d", account, uow.GuildID())
		}
	}

	savepoint, err := uow.Nested(ctx)
	if err != nil {
		return fmt.Errorf("failed to open transaction savepoint: %w", err)
	}
	defer savepoint.Rollback() // No-op if already committed

	if t.Source != nil {
		if err := applyLeg(ctx, savepoint, t, *t.Source, t.Destination, t.Amount.Neg(), true); err != nil {
			return err
		}
	}
	if t.Destination != nil {
		if err := applyLeg(ctx, savepoint, t, *t.Destination, t.Source, t.Amount, false); err != nil {
			return err
		}
	}

	if err := savepoint.Commit(); err != nil {
		return fmt.Errorf("failed to release transaction savepoint: %w", err)
	}

	fields := log.Fields{
		"guildID": uow.GuildID(),
		"amount":  t.Amount.String(),
		"type":    t.Type,
		"depth":   uow.Depth(),
	}
	if t.Source != nil {
		fields["sourceID"] = t.Source.UserID
	}
	if t.Destination != nil {
		fields["destinationID"] = t.Destination.UserID
	}
	log.WithFields(fields).Debug("Transaction applied")

	return nil
}

// applyLeg adds change to one account and records it. A debit leg may not leave the account
// negative unless the transaction allows overdraft, even when the amount is zero.
func applyLeg(ctx context.Context, uow UnitOfWork, t models.Transaction, account models.Account, counterparty *models.Account, change models.Bobux, debit bool) error {
	members := uow.MemberRepository()

	old, err := members.LockBalance(ctx, account.UserID)
	if err != nil {
		return fmt.Errorf("failed to get balance of %s: %w", account, err)
	}

	updated := old.Add(change)
	if debit && updated.IsNegative() && !t.AllowOverdraft {
		return &InsufficientFundsError{Shortfall: updated.Neg()}
	}

	if err := members.SetBalance(ctx, account.UserID, updated); err != nil {
		return fmt.Errorf("failed to set balance of %s: %w", account, err)
	}

	metadata := make(map[string]any, len(t.Metadata)+1)
	for k, v := range t.Metadata {
		metadata[k] = v
	}
	if counterparty != nil {
		metadata["counterparty_id"] = counterparty.UserID
	}

	history := &models.BalanceHistory{
		UserID:              account.UserID,
		GuildID:             account.GuildID,
		BalanceBefore:       old,
		BalanceAfter:        updated,
		ChangeAmount:        change,
		TransactionType:     t.Type,
		TransactionMetadata: metadata,
	}
	return RecordBalanceChange(ctx, uow, history)
}

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// CreateTransaction runs a transaction as the outermost unit of work
func (s *ledgerService) CreateTransaction(ctx context.Context, guildID int64, t models.Transaction) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := CreateTransaction(ctx, uow, t); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) GetBalance(ctx context.Context, account models.Account) (models.Bobux, error) {
	uow := s.uowFactory.CreateForGuild(account.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.MemberRepository().GetBalance(ctx, account.UserID)
	if err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to get balance of %s: %w", account, err)
	}
	return balance, nil
}

func (s *ledgerService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.MemberBalance, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balances, err := uow.MemberRepository().Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	return balances, nil
}

// SetBalance mints or burns the difference between the current and the target balance
func (s *ledgerService) SetBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	uow := s.uowFactory.CreateForGuild(account.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	current, err := uow.MemberRepository().LockBalance(ctx, account.UserID)
	if err != nil {
		return fmt.Errorf("failed to get balance of %s: %w", account, err)
	}

	t := models.Transaction{
		AllowOverdraft: true,
		Type:           models.TransactionTypeAdminSet,
		Metadata:       map[string]any{"target_halves": amount.HalfUnits()},
	}
	switch diff := amount.Sub(current); {
	case diff.IsZero():
		return nil
	case diff.IsNegative():
		t.Source = &account
		t.Amount = diff.Neg()
	default:
		t.Destination = &account
		t.Amount = diff
	}

	if err := CreateTransaction(ctx, uow, t); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) AddBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	return s.CreateTransaction(ctx, account.GuildID, models.Transaction{
		Destination: &account,
		Amount:      amount,
		Type:        models.TransactionTypeAdminAdjust,
	})
}

func (s *ledgerService) SubtractBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	return s.CreateTransaction(ctx, account.GuildID, models.Transaction{
		Source:         &account,
		Amount:         amount,
		AllowOverdraft: true,
		Type:           models.TransactionTypeAdminAdjust,
	})
}

// Pay moves an amount from one member to another in a single transaction
func (s *ledgerService) Pay(ctx context.Context, guildID, fromID, toID int64, amount models.Bobux) error {
	if fromID == toID {
		return NewUserError("You cannot pay yourself.")
	}

	from := models.NewAccount(fromID, guildID)
	to := models.NewAccount(toID, guildID)

	if err := s.CreateTransaction(ctx, guildID, models.Transaction{
		Source:      &from,
		Destination: &to,
		Amount:      amount,
		Type:        models.TransactionTypeTransfer,
	}); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"fromID":  fromID,
		"toID":    toID,
		"amount":  amount.String(),
	}).Info("Payment completed")

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

type subscriptionService struct {
	uowFactory UnitOfWorkFactory
	directory  GuildDirectory
	roles      RoleManager
	now        func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(uowFactory UnitOfWorkFactory, directory GuildDirectory, roles RoleManager) SubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		directory:  directory,
		roles:      roles,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create makes a role available for a weekly price
func (s *subscriptionService) Create(ctx context.Context, guildID, roleID int64, pricePerWeek models.Bobux) error {
	if pricePerWeek.IsNegative() {
		return &NegativeAmountError{}
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	err := uow.SubscriptionRepository().Create(ctx, &models.Subscription{RoleID: roleID, PricePerWeek: pricePerWeek})
	if errors.Is(err, ErrDuplicate) {
		return &SubscriptionExistsError{RoleID: roleID}
	}
	if err != nil {
		return err
	}

	return uow.Commit()
}

// Delete removes a subscription. Current subscribers keep the role.
func (s *subscriptionService) Delete(ctx context.Context, guildID, roleID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	deleted, err := uow.SubscriptionRepository().Delete(ctx, roleID)
	if err != nil {
		return err
	}
	if !deleted {
		return &SubscriptionNotFoundError{RoleID: roleID}
	}

	return uow.Commit()
}

func (s *subscriptionService) List(ctx context.Context, guildID, memberID int64) ([]*models.SubscriptionListing, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.SubscriptionRepository().ListForMember(ctx, memberID)
}

// Subscribe charges the first week and grants the role. Nothing is charged if the grant fails.
func (s *subscriptionService) Subscribe(ctx context.Context, guildID, memberID, roleID int64) (*models.Subscription, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	repo := uow.SubscriptionRepository()

	subscription, err := repo.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, &SubscriptionNotFoundError{RoleID: roleID}
	}

	existing, err := repo.GetMemberSubscription(ctx, memberID, roleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadySubscribedError{RoleID: roleID}
	}

	member := models.NewAccount(memberID, guildID)
	if err := CreateTransaction(ctx, uow, models.Transaction{
		Source:   &member,
		Amount:   subscription.PricePerWeek,
		Type:     models.TransactionTypeSubscriptionCharge,
		Metadata: map[string]any{"role_id": roleID, "first_week": true},
	}); err != nil {
		return nil, err
	}

	err = repo.AddMemberSubscription(ctx, memberID, roleID, s.now())
	if errors.Is(err, ErrDuplicate) {
		return nil, &AlreadySubscribedError{RoleID: roleID}
	}
	if err != nil {
		return nil, err
	}

	if err := s.roles.GrantRole(ctx, guildID, memberID, roleID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, NewBotPermissionError("Role <@&%d> is above the bot's highest role.", roleID)
		}
		return nil, fmt.Errorf("failed to grant role %d: %w", roleID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":  guildID,
		"memberID": memberID,
		"roleID":   roleID,
		"price":    subscription.PricePerWeek.String(),
	}).Info("Member subscribed")

	return subscription, nil
}

// Unsubscribe revokes the role and stops the weekly charge
func (s *subscriptionService) Unsubscribe(ctx context.Context, guildID, memberID, roleID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	removed, err := uow.SubscriptionRepository().RemoveMemberSubscription(ctx, memberID, roleID)
	if err != nil {
		return err
	}
	if !removed {
		return &NotSubscribedError{RoleID: roleID}
	}

	if err := s.roles.RevokeRole(ctx, guildID, memberID, roleID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return NewBotPermissionError("Role <@&%d> is above the bot's highest role.", roleID)
		}
		return fmt.Errorf("failed to revoke role %d: %w", roleID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ChargeAll charges every active subscription once. A member who cannot pay is unsubscribed.
func (s *subscriptionService) ChargeAll(ctx context.Context) error {
	guildIDs, err := s.directory.ListSubscriptionGuilds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscription guilds: %w", err)
	}

	for _, guildID := range guildIDs {
		if err := s.chargeGuild(ctx, guildID); err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Failed to charge subscriptions")
		}
	}
	return nil
}

func (s *subscriptionService) chargeGuild(ctx context.Context, guildID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	subscriptions, err := uow.SubscriptionRepository().ListMemberSubscriptions(ctx)
	if err != nil {
		return err
	}

	charged, lapsed := 0, 0
	for _, ms := range subscriptions {
		ok, err := s.chargeMember(ctx, uow, ms)
		if err != nil {
			log.WithFields(log.Fields{
				"guildID":  guildID,
				"memberID": ms.MemberID,
				"roleID":   ms.RoleID,
			}).WithError(err).Error("Failed to charge subscription")
			continue
		}
		if ok {
			charged++
		} else {
			lapsed++
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"charged": charged,
		"lapsed":  lapsed,
	}).Info("Subscriptions charged")

	return nil
}

// chargeMember charges one week in its own savepoint. It returns false when the member could
// not pay and was unsubscribed.
func (s *subscriptionService) chargeMember(ctx context.Context, uow UnitOfWork, ms *models.MemberSubscription) (bool, error) {
	savepoint, err := uow.Nested(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to open charge savepoint: %w", err)
	}
	defer savepoint.Rollback() // No-op if already committed

	member := models.NewAccount(ms.MemberID, uow.GuildID())
	err = CreateTransaction(ctx, savepoint, models.Transaction{
		Source:   &member,
		Amount:   ms.PricePerWeek,
		Type:     models.TransactionTypeSubscriptionCharge,
		Metadata: map[string]any{"role_id": ms.RoleID},
	})

	var insufficient *InsufficientFundsError
	switch {
	case err == nil:
		return true, savepoint.Commit()
	case !errors.As(err, &insufficient):
		return false, err
	}

	if _, err := savepoint.SubscriptionRepository().RemoveMemberSubscription(ctx, ms.MemberID, ms.RoleID); err != nil {
		return false, err
	}

	if err := s.roles.RevokeRole(ctx, uow.GuildID(), ms.MemberID, ms.RoleID); err != nil {
		log.WithFields(log.Fields{
			"guildID":  uow.GuildID(),
			"memberID": ms.MemberID,
			"roleID":   ms.RoleID,
		}).WithError(err).Warn("Failed to revoke lapsed subscription role")
	}

	savepoint.EventBus().Publish(events.SubscriptionLapsedEvent{
		GuildID:  uow.GuildID(),
		MemberID: ms.MemberID,
		RoleID:   ms.RoleID,
		Price:    ms.PricePerWeek,
	})

	log.WithFields(log.Fields{
		"guildID":  uow.GuildID(),
		"memberID": ms.MemberID,
		"roleID":   ms.RoleID,
	}).Info("Automatically unsubscribed due to insufficient funds")

	return false, savepoint.Commit()
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// ChannelPrices are the purchase prices of real estate channels
var ChannelPrices = map[models.ChannelKind]models.Bobux{
	models.ChannelKindText:  models.NewBobux(150, false),
	models.ChannelKindVoice: models.NewBobux(100, false),
}

// SellingPrice is the refund paid when a channel of kind is sold
func SellingPrice(kind models.ChannelKind) (models.Bobux, bool) {
	price, ok := ChannelPrices[kind]
	if !ok {
		return models.ZeroBobux, false
	}
	return models.BobuxFromFloat(price.Float64() / 2), true
}

type realEstateService struct {
	uowFactory UnitOfWorkFactory
	channels   ChannelManager
}

// NewRealEstateService creates a new real estate service
func NewRealEstateService(uowFactory UnitOfWorkFactory, channels ChannelManager) RealEstateService {
	return &realEstateService{
		uowFactory: uowFactory,
		channels:   channels,
	}
}

// Buy charges the buyer and creates a channel they can manage. The charge is rolled back if
// the channel cannot be created.
func (s *realEstateService) Buy(ctx context.Context, guildID, buyerID int64, kind models.ChannelKind, name string) (*models.PurchasedChannel, error) {
	price, ok := ChannelPrices[kind]
	if !ok {
		return nil, NewUserError("%s channels are not for sale", kind)
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings.RealEstateCategory == nil {
		return nil, NewNotConfiguredError("Real estate is not set up on this server")
	}

	buyer := models.NewAccount(buyerID, guildID)
	if err := CreateTransaction(ctx, uow, models.Transaction{
		Source:   &buyer,
		Amount:   price,
		Type:     models.TransactionTypeRealEstatePurchase,
		Metadata: map[string]any{"kind": string(kind), "name": name},
	}); err != nil {
		return nil, err
	}

	channelID, err := s.channels.CreateOwnedChannel(ctx, guildID, *settings.RealEstateCategory, buyerID, name, kind)
	if errors.Is(err, ErrForbidden) {
		return nil, NewBotPermissionError("The bot needs the Manage Channels permission for real estate")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s channel: %w", kind, err)
	}

	channel := &models.PurchasedChannel{
		ChannelID: channelID,
		OwnerID:   buyerID,
		Kind:      kind,
	}
	if err := uow.PurchasedChannelRepository().Create(ctx, channel); err != nil {
		s.cleanupChannel(ctx, channelID)
		return nil, fmt.Errorf("failed to record purchased channel: %w", err)
	}

	uow.EventBus().Publish(events.RealEstateChangedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		OwnerID:   buyerID,
		Kind:      kind,
	})

	if err := uow.Commit(); err != nil {
		s.cleanupChannel(ctx, channelID)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"buyerID":   buyerID,
		"channelID": channelID,
		"kind":      kind,
	}).Info("Real estate purchased")

	return channel, nil
}

// cleanupChannel deletes a channel whose purchase could not be recorded
func (s *realEstateService) cleanupChannel(ctx context.Context, channelID int64) {
	if err := s.channels.DeleteChannel(ctx, channelID); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to delete unrecorded real estate channel")
	}
}

// Sell deletes a channel owned by the seller and refunds half its price
func (s *realEstateService) Sell(ctx context.Context, guildID, sellerID, channelID int64) (models.Bobux, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	channel, err := uow.PurchasedChannelRepository().Get(ctx, channelID)
	if err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to get purchased channel: %w", err)
	}
	if channel == nil || channel.OwnerID != sellerID {
		return models.ZeroBobux, NewUserError("Only the owner of <#%d> can sell it", channelID)
	}

	refund, ok := SellingPrice(channel.Kind)
	if !ok {
		return models.ZeroBobux, NewUserError("%s channels are not for sale, how did you get one?", channel.Kind)
	}

	if err := uow.PurchasedChannelRepository().Delete(ctx, channelID); err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to delete purchased channel: %w", err)
	}

	seller := models.NewAccount(sellerID, guildID)
	if err := CreateTransaction(ctx, uow, models.Transaction{
		Destination: &seller,
		Amount:      refund,
		Type:        models.TransactionTypeRealEstateSale,
		Metadata:    map[string]any{"channel_id": channelID, "kind": string(channel.Kind)},
	}); err != nil {
		return models.ZeroBobux, err
	}

	if err := s.channels.DeleteChannel(ctx, channelID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return models.ZeroBobux, NewBotPermissionError("The bot needs the Manage Channels permission for real estate")
		}
		return models.ZeroBobux, fmt.Errorf("failed to delete channel: %w", err)
	}

	uow.EventBus().Publish(events.RealEstateChangedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		OwnerID:   sellerID,
		Kind:      channel.Kind,
		Sold:      true,
	})

	if err := uow.Commit(); err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"sellerID":  sellerID,
		"channelID": channelID,
		"refund":    refund.String(),
	}).Info("Real estate sold")

	return refund, nil
}

func (s *realEstateService) Holdings(ctx context.Context, guildID, ownerID int64) ([]*models.PurchasedChannel, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	channels, err := uow.PurchasedChannelRepository().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings of %d: %w", ownerID, err)
	}
	return channels, nil
}

func (s *realEstateService) AllHoldings(ctx context.Context, guildID int64) ([]*models.PurchasedChannel, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	channels, err := uow.PurchasedChannelRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return channels, nil
}

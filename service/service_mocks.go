package service

import (
	"context"

	"github.com/arm32x/bobux-economy/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, guildID int64, transaction models.Transaction) error {
	args := m.Called(ctx, guildID, transaction)
	return args.Error(0)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, account models.Account) (models.Bobux, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(models.Bobux), args.Error(1)
}

func (m *MockLedgerService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.MemberBalance, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemberBalance), args.Error(1)
}

func (m *MockLedgerService) SetBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

func (m *MockLedgerService) AddBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

func (m *MockLedgerService) SubtractBalance(ctx context.Context, account models.Account, amount models.Bobux) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

func (m *MockLedgerService) Pay(ctx context.Context, guildID, fromID, toID int64, amount models.Bobux) error {
	args := m.Called(ctx, guildID, fromID, toID, amount)
	return args.Error(0)
}

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateAdminRole(ctx context.Context, guildID int64, roleID *int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

func (m *MockGuildSettingsService) UpdateMemesChannel(ctx context.Context, guildID int64, channelID *int64) error {
	args := m.Called(ctx, guildID, channelID)
	return args.Error(0)
}

func (m *MockGuildSettingsService) UpdateRealEstateCategory(ctx context.Context, guildID int64, categoryID *int64) error {
	args := m.Called(ctx, guildID, categoryID)
	return args.Error(0)
}

// MockRealEstateService is a mock implementation of RealEstateService
type MockRealEstateService struct {
	mock.Mock
}

func (m *MockRealEstateService) Buy(ctx context.Context, guildID, buyerID int64, kind models.ChannelKind, name string) (*models.PurchasedChannel, error) {
	args := m.Called(ctx, guildID, buyerID, kind, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchasedChannel), args.Error(1)
}

func (m *MockRealEstateService) Sell(ctx context.Context, guildID, sellerID, channelID int64) (models.Bobux, error) {
	args := m.Called(ctx, guildID, sellerID, channelID)
	return args.Get(0).(models.Bobux), args.Error(1)
}

func (m *MockRealEstateService) Holdings(ctx context.Context, guildID, ownerID int64) ([]*models.PurchasedChannel, error) {
	args := m.Called(ctx, guildID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedChannel), args.Error(1)
}

func (m *MockRealEstateService) AllHoldings(ctx context.Context, guildID int64) ([]*models.PurchasedChannel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedChannel), args.Error(1)
}

// MockSubscriptionService is a mock implementation of SubscriptionService
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Create(ctx context.Context, guildID, roleID int64, pricePerWeek models.Bobux) error {
	args := m.Called(ctx, guildID, roleID, pricePerWeek)
	return args.Error(0)
}

func (m *MockSubscriptionService) Delete(ctx context.Context, guildID, roleID int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

func (m *MockSubscriptionService) List(ctx context.Context, guildID, memberID int64) ([]*models.SubscriptionListing, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionListing), args.Error(1)
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, guildID, memberID, roleID int64) (*models.Subscription, error) {
	args := m.Called(ctx, guildID, memberID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Unsubscribe(ctx context.Context, guildID, memberID, roleID int64) error {
	args := m.Called(ctx, guildID, memberID, roleID)
	return args.Error(0)
}

func (m *MockSubscriptionService) ChargeAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRelocateService is a mock implementation of RelocateService
type MockRelocateService struct {
	mock.Mock
}

func (m *MockRelocateService) Relocate(ctx context.Context, msg *models.Message, destinationChannelID int64, stripSpeechBubbles bool) error {
	args := m.Called(ctx, msg, destinationChannelID, stripSpeechBubbles)
	return args.Error(0)
}

// MockSyncService is a mock implementation of SyncService
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncVotes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSyncService) SyncMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockVotingService is a mock implementation of VotingService
type MockVotingService struct {
	mock.Mock
}

func (m *MockVotingService) HandleMessagePosted(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockVotingService) HandleReactionAdded(ctx context.Context, reaction models.ReactionEvent) error {
	args := m.Called(ctx, reaction)
	return args.Error(0)
}

func (m *MockVotingService) HandleReactionRemoved(ctx context.Context, reaction models.ReactionEvent) error {
	args := m.Called(ctx, reaction)
	return args.Error(0)
}

func (m *MockVotingService) ApplyVoteTransition(ctx context.Context, uow UnitOfWork, msg *models.Message, voterID int64, old, new models.Vote) error {
	args := m.Called(ctx, uow, msg, voterID, old, new)
	return args.Error(0)
}

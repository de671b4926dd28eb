package service

import (
	"context"
	"time"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"

	"github.com/stretchr/testify/mock"
)

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Bobux), args.Error(1)
}

func (m *MockMemberRepository) LockBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Bobux), args.Error(1)
}

func (m *MockMemberRepository) SetBalance(ctx context.Context, userID int64, balance models.Bobux) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockMemberRepository) Leaderboard(ctx context.Context, limit int) ([]*models.MemberBalance, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemberBalance), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockVoteRepository is a mock implementation of VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) GetPrevious(ctx context.Context, messageID, memberID int64) (models.Vote, error) {
	args := m.Called(ctx, messageID, memberID)
	return args.Get(0).(models.Vote), args.Error(1)
}

func (m *MockVoteRepository) Record(ctx context.Context, messageID, channelID, memberID int64, vote models.Vote) (models.Vote, error) {
	args := m.Called(ctx, messageID, channelID, memberID, vote)
	return args.Get(0).(models.Vote), args.Error(1)
}

func (m *MockVoteRepository) Delete(ctx context.Context, messageID, memberID int64, expected models.Vote) (models.Vote, error) {
	args := m.Called(ctx, messageID, memberID, expected)
	return args.Get(0).(models.Vote), args.Error(1)
}

func (m *MockVoteRepository) DeleteAllForMessage(ctx context.Context, messageID int64) (map[int64]models.Vote, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]models.Vote), args.Error(1)
}

func (m *MockVoteRepository) ListVotedMessages(ctx context.Context) ([]*models.VotedMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VotedMessage), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockGuildSettingsRepository) SetLastMemesMessage(ctx context.Context, guildID, messageID int64) error {
	args := m.Called(ctx, guildID, messageID)
	return args.Error(0)
}

// MockGuildDirectory is a mock implementation of GuildDirectory
type MockGuildDirectory struct {
	mock.Mock
}

func (m *MockGuildDirectory) ListSyncTargets(ctx context.Context) ([]*models.SyncTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SyncTarget), args.Error(1)
}

func (m *MockGuildDirectory) ListSubscriptionGuilds(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockWebhookRepository is a mock implementation of WebhookRepository
type MockWebhookRepository struct {
	mock.Mock
}

func (m *MockWebhookRepository) GetMemberID(ctx context.Context, webhookID int64) (*int64, error) {
	args := m.Called(ctx, webhookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockWebhookRepository) RecordPuppet(ctx context.Context, webhookID, memberID int64) error {
	args := m.Called(ctx, webhookID, memberID)
	return args.Error(0)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Get(ctx context.Context, roleID int64) (*models.Subscription, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, roleID int64) (bool, error) {
	args := m.Called(ctx, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ListAvailable(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListForMember(ctx context.Context, memberID int64) ([]*models.SubscriptionListing, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionListing), args.Error(1)
}

func (m *MockSubscriptionRepository) GetMemberSubscription(ctx context.Context, memberID, roleID int64) (*models.MemberSubscription, error) {
	args := m.Called(ctx, memberID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MemberSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) AddMemberSubscription(ctx context.Context, memberID, roleID int64, since time.Time) error {
	args := m.Called(ctx, memberID, roleID, since)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) RemoveMemberSubscription(ctx context.Context, memberID, roleID int64) (bool, error) {
	args := m.Called(ctx, memberID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ListMemberSubscriptions(ctx context.Context) ([]*models.MemberSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemberSubscription), args.Error(1)
}

// MockPurchasedChannelRepository is a mock implementation of PurchasedChannelRepository
type MockPurchasedChannelRepository struct {
	mock.Mock
}

func (m *MockPurchasedChannelRepository) Create(ctx context.Context, channel *models.PurchasedChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockPurchasedChannelRepository) Get(ctx context.Context, channelID int64) (*models.PurchasedChannel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchasedChannel), args.Error(1)
}

func (m *MockPurchasedChannelRepository) Delete(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockPurchasedChannelRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.PurchasedChannel, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedChannel), args.Error(1)
}

func (m *MockPurchasedChannelRepository) ListAll(ctx context.Context) ([]*models.PurchasedChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedChannel), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Nested returns whatever the test
// configures, usually the same mock.
type MockUnitOfWork struct {
	mock.Mock

	guildID              int64
	depth                int
	memberRepo           MemberRepository
	balanceHistoryRepo   BalanceHistoryRepository
	voteRepo             VoteRepository
	guildSettingsRepo    GuildSettingsRepository
	webhookRepo          WebhookRepository
	subscriptionRepo     SubscriptionRepository
	purchasedChannelRepo PurchasedChannelRepository
	eventBus             EventPublisher
}

// NewMockUnitOfWork creates a mock unit of work scoped to guildID
func NewMockUnitOfWork(guildID int64) *MockUnitOfWork {
	return &MockUnitOfWork{guildID: guildID}
}

// SetRepositories configures the ledger repositories and event bus
func (m *MockUnitOfWork) SetRepositories(memberRepo MemberRepository, balanceHistoryRepo BalanceHistoryRepository, eventBus EventPublisher) {
	m.memberRepo = memberRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.eventBus = eventBus
}

// SetVoteRepository configures the vote repository
func (m *MockUnitOfWork) SetVoteRepository(repo VoteRepository) { m.voteRepo = repo }

// SetGuildSettingsRepository configures the guild settings repository
func (m *MockUnitOfWork) SetGuildSettingsRepository(repo GuildSettingsRepository) {
	m.guildSettingsRepo = repo
}

// SetWebhookRepository configures the webhook repository
func (m *MockUnitOfWork) SetWebhookRepository(repo WebhookRepository) { m.webhookRepo = repo }

// SetSubscriptionRepository configures the subscription repository
func (m *MockUnitOfWork) SetSubscriptionRepository(repo SubscriptionRepository) {
	m.subscriptionRepo = repo
}

// SetPurchasedChannelRepository configures the purchased channel repository
func (m *MockUnitOfWork) SetPurchasedChannelRepository(repo PurchasedChannelRepository) {
	m.purchasedChannelRepo = repo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Nested(ctx context.Context) (UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(UnitOfWork), args.Error(1)
}

func (m *MockUnitOfWork) Depth() int     { return m.depth }
func (m *MockUnitOfWork) GuildID() int64 { return m.guildID }

func (m *MockUnitOfWork) MemberRepository() MemberRepository { return m.memberRepo }
func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}
func (m *MockUnitOfWork) VoteRepository() VoteRepository { return m.voteRepo }
func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.guildSettingsRepo
}
func (m *MockUnitOfWork) WebhookRepository() WebhookRepository { return m.webhookRepo }
func (m *MockUnitOfWork) SubscriptionRepository() SubscriptionRepository {
	return m.subscriptionRepo
}
func (m *MockUnitOfWork) PurchasedChannelRepository() PurchasedChannelRepository {
	return m.purchasedChannelRepo
}
func (m *MockUnitOfWork) EventBus() EventPublisher { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}

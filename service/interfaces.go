package service

import (
	"context"
	"time"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
)

// MemberRepository defines the interface for member balance data access
type MemberRepository interface {
	// GetBalance returns a member's balance, or zero if the member has no row yet
	GetBalance(ctx context.Context, userID int64) (models.Bobux, error)

	// LockBalance creates a zero row if needed and locks it until the transaction ends.
	// Every read that precedes a SetBalance goes through here.
	LockBalance(ctx context.Context, userID int64) (models.Bobux, error)

	// SetBalance creates or overwrites a member's balance row
	SetBalance(ctx context.Context, userID int64, balance models.Bobux) error

	// Leaderboard returns balances ordered from highest to lowest
	Leaderboard(ctx context.Context, limit int) ([]*models.MemberBalance, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the most recent balance history entries for a member
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// VoteRepository defines the interface for vote record storage
type VoteRepository interface {
	// GetPrevious returns the stored vote, or VoteNone
	GetPrevious(ctx context.Context, messageID, memberID int64) (models.Vote, error)

	// Record upserts a vote in a single statement and returns the vote it replaced
	Record(ctx context.Context, messageID, channelID, memberID int64, vote models.Vote) (models.Vote, error)

	// Delete removes a vote and returns what was stored. When expected is not VoteNone the row
	// is only removed if it holds that vote; otherwise VoteNone is returned and nothing changes.
	Delete(ctx context.Context, messageID, memberID int64, expected models.Vote) (models.Vote, error)

	// DeleteAllForMessage removes every vote on a message and returns them keyed by member
	DeleteAllForMessage(ctx context.Context, messageID int64) (map[int64]models.Vote, error)

	// ListVotedMessages returns every message in the guild that has at least one vote
	ListVotedMessages(ctx context.Context) ([]*models.VotedMessage, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error

	// SetLastMemesMessage records the newest message seen in the memes channel
	SetLastMemesMessage(ctx context.Context, guildID, messageID int64) error
}

// GuildDirectory lists guilds across the whole store, outside any unit of work
type GuildDirectory interface {
	// ListSyncTargets returns guilds with a memes channel and a last known message
	ListSyncTargets(ctx context.Context) ([]*models.SyncTarget, error)

	// ListSubscriptionGuilds returns guilds with at least one active member subscription
	ListSubscriptionGuilds(ctx context.Context) ([]int64, error)
}

// WebhookRepository maps relocation webhooks to the members they impersonate
type WebhookRepository interface {
	// GetMemberID returns the impersonated member, or nil if the webhook is unknown
	GetMemberID(ctx context.Context, webhookID int64) (*int64, error)

	// RecordPuppet stores a webhook to member mapping. Returns ErrDuplicate if the webhook is known.
	RecordPuppet(ctx context.Context, webhookID, memberID int64) error
}

// SubscriptionRepository defines the interface for role subscription data access
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	Get(ctx context.Context, roleID int64) (*models.Subscription, error)
	Delete(ctx context.Context, roleID int64) (bool, error)
	ListAvailable(ctx context.Context) ([]*models.Subscription, error)

	// ListForMember returns every available subscription annotated with the member's status
	ListForMember(ctx context.Context, memberID int64) ([]*models.SubscriptionListing, error)

	GetMemberSubscription(ctx context.Context, memberID, roleID int64) (*models.MemberSubscription, error)
	AddMemberSubscription(ctx context.Context, memberID, roleID int64, since time.Time) error
	RemoveMemberSubscription(ctx context.Context, memberID, roleID int64) (bool, error)

	// ListMemberSubscriptions returns every active member subscription in the guild
	ListMemberSubscriptions(ctx context.Context) ([]*models.MemberSubscription, error)
}

// PurchasedChannelRepository defines the interface for real estate data access
type PurchasedChannelRepository interface {
	Create(ctx context.Context, channel *models.PurchasedChannel) error
	Get(ctx context.Context, channelID int64) (*models.PurchasedChannel, error)
	Delete(ctx context.Context, channelID int64) error
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.PurchasedChannel, error)
	ListAll(ctx context.Context) ([]*models.PurchasedChannel, error)
}

// EventPublisher accepts events raised inside a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction, or releases the savepoint of a nested unit
	Commit() error

	// Rollback rolls back the transaction, or rolls back to the savepoint of a nested unit
	Rollback() error

	// Nested opens a savepoint inside the current transaction
	Nested(ctx context.Context) (UnitOfWork, error)

	// Depth is 0 for the outermost unit and grows by one per savepoint
	Depth() int

	// GuildID is the guild every repository of this unit is scoped to
	GuildID() int64

	// Repository getters
	MemberRepository() MemberRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	VoteRepository() VoteRepository
	GuildSettingsRepository() GuildSettingsRepository
	WebhookRepository() WebhookRepository
	SubscriptionRepository() SubscriptionRepository
	PurchasedChannelRepository() PurchasedChannelRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}

// ChatPlatform is the subset of the chat platform the economy talks to
type ChatPlatform interface {
	BotUserID() int64
	FetchMessage(ctx context.Context, channelID, messageID int64) (*models.Message, error)

	// MessagesAfter returns up to limit messages posted after afterID, oldest first
	MessagesAfter(ctx context.Context, channelID, afterID int64, limit int) ([]*models.Message, error)

	AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, userID int64) error

	// ReactionUsers returns the ids of every user who reacted with emoji
	ReactionUsers(ctx context.Context, channelID, messageID int64, emoji string) ([]int64, error)
}

// MemberResolver looks up guild members
type MemberResolver interface {
	// ResolveMember returns nil, nil when the user is not a member of the guild
	ResolveMember(ctx context.Context, guildID, userID int64) (*models.Member, error)
}

// RoleManager grants and revokes guild roles
type RoleManager interface {
	GrantRole(ctx context.Context, guildID, userID, roleID int64) error
	RevokeRole(ctx context.Context, guildID, userID, roleID int64) error
}

// ChannelManager creates and deletes real estate channels
type ChannelManager interface {
	// CreateOwnedChannel creates a channel under categoryID that ownerID can manage
	CreateOwnedChannel(ctx context.Context, guildID, categoryID, ownerID int64, name string, kind models.ChannelKind) (int64, error)
	DeleteChannel(ctx context.Context, channelID int64) error
}

// Webhook is a webhook created to repost a message
type Webhook struct {
	ID    int64
	Token string
}

// Repost is a message sent through a webhook under another member's name
type Repost struct {
	Content        string
	Username       string
	AvatarURL      string
	AttachmentURLs []string
}

// MessageRelocator moves messages between channels through webhooks
type MessageRelocator interface {
	CreateWebhook(ctx context.Context, channelID int64, name string) (*Webhook, error)
	ExecuteWebhook(ctx context.Context, webhook *Webhook, repost *Repost) error
	DeleteWebhook(ctx context.Context, webhookID int64) error
	DeleteMessage(ctx context.Context, channelID, messageID int64) error
}

// LedgerService defines balance operations for callers without a unit of work
type LedgerService interface {
	// CreateTransaction runs a transaction in its own outermost unit of work
	CreateTransaction(ctx context.Context, guildID int64, transaction models.Transaction) error

	GetBalance(ctx context.Context, account models.Account) (models.Bobux, error)
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.MemberBalance, error)

	// SetBalance mints or burns the difference between the current and target balance
	SetBalance(ctx context.Context, account models.Account, amount models.Bobux) error
	AddBalance(ctx context.Context, account models.Account, amount models.Bobux) error

	// SubtractBalance burns an amount and may leave the balance negative
	SubtractBalance(ctx context.Context, account models.Account, amount models.Bobux) error

	// Pay moves an amount between two members without overdraft
	Pay(ctx context.Context, guildID, fromID, toID int64, amount models.Bobux) error
}

// VotingService defines the live vote event handlers
type VotingService interface {
	HandleMessagePosted(ctx context.Context, msg *models.Message) error
	HandleReactionAdded(ctx context.Context, reaction models.ReactionEvent) error
	HandleReactionRemoved(ctx context.Context, reaction models.ReactionEvent) error

	// ApplyVoteTransition resolves the poster of msg and applies the reward change inside uow.
	// An unresolvable poster is logged and skipped.
	ApplyVoteTransition(ctx context.Context, uow UnitOfWork, msg *models.Message, voterID int64, old, new models.Vote) error
}

// SyncService reconciles stored votes with the live reaction state
type SyncService interface {
	SyncVotes(ctx context.Context) error
	SyncMessage(ctx context.Context, msg *models.Message) error
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones if not found
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// Setters accept nil to unset
	UpdateAdminRole(ctx context.Context, guildID int64, roleID *int64) error
	UpdateMemesChannel(ctx context.Context, guildID int64, channelID *int64) error
	UpdateRealEstateCategory(ctx context.Context, guildID int64, categoryID *int64) error
}

// RealEstateService defines channel purchase operations
type RealEstateService interface {
	Buy(ctx context.Context, guildID, buyerID int64, kind models.ChannelKind, name string) (*models.PurchasedChannel, error)

	// Sell deletes an owned channel and refunds half its price
	Sell(ctx context.Context, guildID, sellerID, channelID int64) (models.Bobux, error)

	Holdings(ctx context.Context, guildID, ownerID int64) ([]*models.PurchasedChannel, error)
	AllHoldings(ctx context.Context, guildID int64) ([]*models.PurchasedChannel, error)
}

// SubscriptionService defines weekly role subscription operations
type SubscriptionService interface {
	Create(ctx context.Context, guildID, roleID int64, pricePerWeek models.Bobux) error
	Delete(ctx context.Context, guildID, roleID int64) error
	List(ctx context.Context, guildID, memberID int64) ([]*models.SubscriptionListing, error)
	Subscribe(ctx context.Context, guildID, memberID, roleID int64) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, guildID, memberID, roleID int64) error

	// ChargeAll charges every active subscription once
	ChargeAll(ctx context.Context) error
}

// RelocateService moves messages to another channel under their original author's name
type RelocateService interface {
	Relocate(ctx context.Context, msg *models.Message, destinationChannelID int64, stripSpeechBubbles bool) error
}

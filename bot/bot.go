package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/bot/features/balance"
	"github.com/arm32x/bobux-economy/bot/features/botinfo"
	"github.com/arm32x/bobux-economy/bot/features/realestate"
	"github.com/arm32x/bobux-economy/bot/features/relocate"
	"github.com/arm32x/bobux-economy/bot/features/settings"
	"github.com/arm32x/bobux-economy/bot/features/subscriptions"
	"github.com/arm32x/bobux-economy/bot/features/transfer"
	"github.com/arm32x/bobux-economy/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // Registers commands to one guild when set

	SubscriptionDebugTiming bool
}

// Services are the economy operations the bot drives
type Services struct {
	Ledger        service.LedgerService
	Settings      service.GuildSettingsService
	Voting        service.VotingService
	Sync          service.SyncService
	RealEstate    service.RealEstateService
	Subscriptions service.SubscriptionService
	Relocate      service.RelocateService

	// SyncGate holds reaction events until the startup sync finished
	SyncGate *service.SyncGate
}

// Bot manages the Discord bot and all feature modules
type Bot struct {
	// Core components
	config   Config
	session  *discordgo.Session
	platform *Platform
	resolver *UserResolver
	services Services

	// Application commands by name
	commands map[string]common.Command

	// Votes are reconciled on the first Ready only
	startupSync sync.Once

	// Worker cleanup functions
	stopSubscriptionWorker func()
}

// NewSession creates the Discord session the platform adapters and the bot share
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	return dg, nil
}

// New wires the features, opens the gateway connection and registers commands
func New(config Config, session *discordgo.Session, platform *Platform, resolver *UserResolver, services Services) (*Bot, error) {
	bot := &Bot{
		config:   config,
		session:  session,
		platform: platform,
		resolver: resolver,
		services: services,
	}

	commands, err := collectCommands(bot.features()...)
	if err != nil {
		return nil, err
	}
	bot.commands = commands

	// Register handlers
	session.AddHandler(bot.handleCommands)
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleGuildCreate)
	session.AddHandler(bot.handleMessageCreate)
	session.AddHandler(bot.handleReactionAdd)
	session.AddHandler(bot.handleReactionRemove)
	session.AddHandler(bot.handleMemberUpdate)
	session.AddHandler(bot.handleMemberRemove)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start background workers
	bot.stopSubscriptionWorker = bot.StartSubscriptionChargeWorker(context.Background())
	log.Info("Background workers started")

	return bot, nil
}

func (b *Bot) features() []commandProvider {
	return []commandProvider{
		balance.New(b.services.Ledger, b.services.Settings),
		transfer.New(b.services.Ledger),
		settings.New(b.services.Settings),
		realestate.New(b.services.RealEstate),
		subscriptions.New(b.services.Subscriptions, b.services.Settings),
		relocate.New(b.services.Relocate, b.services.Settings, b.platform),
		botinfo.New(),
	}
}

func (b *Bot) Close() error {
	// Stop background workers
	if b.stopSubscriptionWorker != nil {
		b.stopSubscriptionWorker()
	}
	log.Info("Background workers stopped")

	return b.session.Close()
}

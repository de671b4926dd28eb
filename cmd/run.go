package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/arm32x/bobux-economy/api"
	"github.com/arm32x/bobux-economy/bot"
	"github.com/arm32x/bobux-economy/config"
	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/infrastructure"
	"github.com/arm32x/bobux-economy/repository"
	"github.com/arm32x/bobux-economy/service"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and picks JSON output in production
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting bobux economy...")

	// Apply pending migrations
	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	guildDirectory := repository.NewGuildSettingsRepository(db)

	// Forward committed events to NATS when configured
	if cfg.NATSServers != "" {
		natsClient, err := startEventForwarding(ctx, cfg.NATSServers, eventBus)
		if err != nil {
			return err
		}
		defer natsClient.Close()
	}

	// Discord adapters
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	platform := bot.NewPlatform(session)
	resolver := bot.NewUserResolver(session)

	// Initialize services
	log.Info("Initializing services...")
	emoji := service.VoteEmoji{Upvote: cfg.UpvoteEmoji, Downvote: cfg.DownvoteEmoji}
	gate := service.NewSyncGate()
	authors := service.NewAuthorResolver(resolver, repository.NewWebhookRepository(db))
	settings := service.NewGuildSettingsService(uowFactory)
	ledger := service.NewLedgerService(uowFactory)
	subscriptions := service.NewSubscriptionService(uowFactory, guildDirectory, platform)

	// Tracker capacity and TTL fall back to their defaults
	services := bot.Services{
		Ledger:        ledger,
		Settings:      settings,
		Voting:        service.NewVotingService(uowFactory, settings, platform, authors, service.NewReactionRemovalTracker(0, 0), emoji, gate),
		Sync:          service.NewSyncService(uowFactory, guildDirectory, platform, authors, emoji, gate, cfg.SyncFullRescan),
		RealEstate:    service.NewRealEstateService(uowFactory, platform),
		Subscriptions: subscriptions,
		Relocate:      service.NewRelocateService(uowFactory, platform, authors),
		SyncGate:      gate,
	}

	// Serve the read-only HTTP API when configured
	var apiDone chan error
	if cfg.HTTPAPIAddr != "" {
		server := api.NewServer(cfg.HTTPAPIAddr, api.NewHandler(ledger, subscriptions))
		apiDone = make(chan error, 1)
		go func() { apiDone <- server.Run(ctx) }()
	}

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:                   cfg.DiscordToken,
		GuildID:                 cfg.GuildID,
		SubscriptionDebugTiming: cfg.SubscriptionDebugTiming,
	}
	discordBot, err := bot.New(botConfig, session, platform, resolver, services)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	// A nil apiDone never fires
	select {
	case <-ctx.Done():
	case err := <-apiDone:
		if err != nil {
			log.Errorf("HTTP API failed: %v", err)
		}
		apiDone = nil
		<-ctx.Done()
	}

	// Cleanup resources
	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	if apiDone != nil {
		select {
		case <-apiDone:
		case <-time.After(10 * time.Second):
			log.Warn("Shutdown timeout exceeded")
		}
	}

	log.Info("Shutdown completed")
	return nil
}

func startEventForwarding(ctx context.Context, servers string, bus *events.Bus) (*infrastructure.NATSClient, error) {
	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(servers)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := natsClient.EnsureStream(infrastructure.EventStreamName, mapper.GetAllSubjects()); err != nil {
		natsClient.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	infrastructure.NewEventForwarder(natsClient, mapper).Register(bus)
	log.Info("Event forwarding to NATS enabled")
	return natsClient, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/arm32x/bobux-economy/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // Registers commands in one guild instead of globally

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Voting
	UpvoteEmoji    string `env:"UPVOTE_EMOJI" envDefault:"⬆️"`
	DownvoteEmoji  string `env:"DOWNVOTE_EMOJI" envDefault:"⬇️"`
	SyncFullRescan bool   `env:"SYNC_FULL_RESCAN" envDefault:"false"`

	// Subscriptions are charged every minute instead of weekly
	SubscriptionDebugTiming bool `env:"SUBSCRIPTION_DEBUG_TIMING" envDefault:"false"`

	// Optional outer surfaces, disabled when empty
	NATSServers string `env:"NATS_SERVERS"`
	HTTPAPIAddr string `env:"HTTP_API_ADDR"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsTest reports whether required fields are skipped
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

// load reads .env when present, then the process environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.IsTest() {
		return config, nil
	}

	// Validate required configuration
	if config.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
		return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if config.UpvoteEmoji == config.DownvoteEmoji {
		return nil, fmt.Errorf("UPVOTE_EMOJI and DOWNVOTE_EMOJI must differ")
	}

	return config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:  "test-token",
		UpvoteEmoji:   "⬆️",
		DownvoteEmoji: "⬇️",
		LogLevel:      "debug",
		Environment:   "test",
	}
}

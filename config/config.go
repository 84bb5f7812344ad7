package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"socialmap/database"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken         string
	TelegramMode          string // "webhook" or "polling"
	TelegramWebhookSecret string
	TelegramChatID        int64 // Primary community chat

	// Moderation configuration
	AdminIDs  []int64 // Telegram IDs allowed to run admin commands
	ImmuneIDs []int64 // Service/system accounts that are never auto-muted
	MaxWarns  int

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration
	RedisURL string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables forwarding

	// HTTP API configuration
	HTTPAddr    string
	CORSOrigins []string

	// Firebase configuration
	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	// Cloudinary configuration
	CloudinaryURL string

	// Geocoding configuration
	GeocoderBaseURL   string
	GeocoderUserAgent string

	// Trigger phrase overrides
	TriggersFile string

	// Economy configuration
	StartingCredits int64
	DuelMinBet      int64
	DuelMaxBet      int64
	DuelTaxPercent  int64

	// Environment
	Environment string // "development", "production" or "test"
	LogLevel    string
	BotVersion  string
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

// IsAdmin reports whether the telegram user is in the configured administrator set
func (c *Config) IsAdmin(telegramID int64) bool {
	return containsID(c.AdminIDs, telegramID)
}

// IsImmune reports whether the telegram user is a configured service account
func (c *Config) IsImmune(telegramID int64) bool {
	return containsID(c.ImmuneIDs, telegramID)
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Telegram
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		TelegramMode:          getEnvWithDefault("TELEGRAM_MODE", "webhook"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),

		// Moderation
		AdminIDs:  parseIDList(os.Getenv("ADMIN_IDS")),
		ImmuneIDs: parseIDList(os.Getenv("IMMUNE_IDS")),
		MaxWarns:  3,

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Redis
		RedisURL: getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// HTTP
		HTTPAddr:    getEnvWithDefault("HTTP_ADDR", ":8080"),
		CORSOrigins: parseList(getEnvWithDefault("CORS_ORIGINS", "*")),

		// Firebase
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),

		// Cloudinary
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		// Geocoding
		GeocoderBaseURL:   getEnvWithDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnvWithDefault("GEOCODER_USER_AGENT", "socialmap-backend/1.0 (+https://github.com/socialmap)"),

		TriggersFile: os.Getenv("TRIGGERS_FILE"),

		// Economy settings with defaults
		StartingCredits: 1000,
		DuelMinBet:      10,
		DuelMaxBet:      10000,
		DuelTaxPercent:  10,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		BotVersion:  getEnvWithDefault("BOT_VERSION", "dev"),
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			config.TelegramChatID = parsed
		}
	}

	// Override defaults if environment variables are set
	overrideInt64(&config.StartingCredits, "STARTING_CREDITS")
	overrideInt64(&config.DuelMinBet, "DUEL_MIN_BET")
	overrideInt64(&config.DuelMaxBet, "DUEL_MAX_BET")
	overrideInt64(&config.DuelTaxPercent, "DUEL_TAX_PERCENT")
	if maxWarns := os.Getenv("MAX_WARNS"); maxWarns != "" {
		if parsed, err := strconv.Atoi(maxWarns); err == nil && parsed > 0 {
			config.MaxWarns = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.TelegramMode != "webhook" && config.TelegramMode != "polling" {
			return nil, fmt.Errorf("TELEGRAM_MODE must be webhook or polling, got %q", config.TelegramMode)
		}
		if config.TelegramMode == "webhook" && config.TelegramWebhookSecret == "" {
			return nil, fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required in webhook mode")
		}
		if config.DuelMinBet <= 0 || config.DuelMaxBet < config.DuelMinBet {
			return nil, fmt.Errorf("invalid duel bet range [%d, %d]", config.DuelMinBet, config.DuelMaxBet)
		}
		if config.DuelTaxPercent < 0 || config.DuelTaxPercent >= 100 {
			return nil, fmt.Errorf("DUEL_TAX_PERCENT must be in [0, 100)")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func overrideInt64(target *int64, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}

// parseIDList parses a comma-separated list of telegram IDs, skipping malformed entries
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, idStr := range parseList(raw) {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
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
		Environment:     "test",
		TelegramMode:    "polling",
		AdminIDs:        []int64{999999, 999998},
		ImmuneIDs:       []int64{777000},
		MaxWarns:        3,
		StartingCredits: 1000,
		DuelMinBet:      10,
		DuelMaxBet:      10000,
		DuelTaxPercent:  10,
		LogLevel:        "debug",
		BotVersion:      "test",
	}
}

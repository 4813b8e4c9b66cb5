package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the marketplace service
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Kafka       KafkaConfig
	Marketplace MarketplaceConfig

	// Logging
	LogLevel string
}

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Backend  string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	ListingCacheTTL time.Duration
	LockTTL         time.Duration
	LockWait        time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled             bool          `json:"enabled"`
	WindowDuration      time.Duration `json:"window_duration"`
	DefaultRequests     int           `json:"default_requests"`
	PublicRequests      int           `json:"public_requests"`
	AuthRequests        int           `json:"auth_requests"`
	MarketplaceRequests int           `json:"marketplace_requests"`
	AdminRequests       int           `json:"admin_requests"`
	WhitelistedIPs      []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds the domain event stream configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// MarketplaceConfig holds fee defaults and transaction limits
type MarketplaceConfig struct {
	DefaultServicePercent    decimal.Decimal
	DefaultFixedFee          decimal.Decimal
	MaxTicketsPerTransaction int
	LockBackend              string // "memory" or "redis"
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Backend:  getEnv("STORAGE_BACKEND", BackendPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "boletamaster_db"),
			User:     getEnv("DB_USER", "boletamaster"),
			Password: getEnv("DB_PASSWORD", "boletamaster"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			ListingCacheTTL: getDurationEnv("REDIS_LISTING_CACHE_TTL", 30*time.Second),
			LockTTL:         getDurationEnv("REDIS_LOCK_TTL", 10*time.Second),
			LockWait:        getDurationEnv("REDIS_LOCK_WAIT", 3*time.Second),
		},

		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "change-me-in-production"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		RateLimit: RateLimitConfig{
			Enabled:             getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:      getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:     getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:      getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:        getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			MarketplaceRequests: getIntEnv("RATE_LIMIT_MARKETPLACE_REQUESTS", 30),
			AdminRequests:       getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			WhitelistedIPs:      getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Enabled:       getBoolEnv("KAFKA_ENABLED", false),
			Brokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         getEnv("KAFKA_MARKETPLACE_TOPIC", "marketplace-events"),
			ConsumerGroup: getEnv("KAFKA_ACTIVITY_GROUP", "activity-log"),
		},

		Marketplace: MarketplaceConfig{
			DefaultServicePercent:    getDecimalEnv("DEFAULT_SERVICE_PERCENT", decimal.RequireFromString("0.10")),
			DefaultFixedFee:          getDecimalEnv("DEFAULT_FIXED_FEE", decimal.NewFromInt(5)),
			MaxTicketsPerTransaction: getIntEnv("MAX_TICKETS_PER_TRANSACTION", 10),
			LockBackend:              getEnv("LOCK_BACKEND", "memory"),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDecimalEnv gets a decimal environment variable with a fallback value
func getDecimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds reads a number of seconds
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingTokenSecret  = errors.New("AUTH_TOKEN_SECRET is required")
	ErrUnknownTokenType    = errors.New("unknown AUTH_TOKEN_STRATEGY")
	ErrUnknownDBDriver     = errors.New("unknown DB_DRIVER")
	ErrTokenSecretTooShort = errors.New("AUTH_TOKEN_SECRET is too short")
)

// Token strategies
const (
	TokenStrategyJWT    = "jwt"
	TokenStrategyPaseto = "paseto"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Email     EmailConfig
	Queue     QueueConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
	// TrustProxy honours X-Forwarded-For/X-Real-IP; enable only behind a
	// proxy that overwrites them
	TrustProxy bool
}

type DatabaseConfig struct {
	Driver         string // postgres or sqlite
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for hosted Postgres providers, empty for local
	SQLitePath     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenStrategy selects the session token format: jwt (HS256) or paseto (v4.local)
	TokenStrategy string
	// TokenSecret signs JWTs; for PASETO it must be exactly 32 bytes
	TokenSecret   []byte
	TokenDuration time.Duration
	CookieName    string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FrontendURL  string
}

type QueueConfig struct {
	AMQPURL  string // empty disables event publishing
	Exchange string
}

type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", getEnv("SERVER_PORT", "8080")),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
			TrustProxy:      getBoolEnv("TRUST_PROXY", false),
		},
		Database: databaseFromEnv(),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenStrategy: strings.ToLower(getEnv("AUTH_TOKEN_STRATEGY", TokenStrategyJWT)),
			TokenSecret:   []byte(os.Getenv("AUTH_TOKEN_SECRET")),
			TokenDuration: getDurationEnv("AUTH_TOKEN_DURATION", 24*time.Hour),
			CookieName:    getEnv("AUTH_COOKIE_NAME", "auth_token"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Queue: QueueConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "lankamarket.events"),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("RATE_LIMIT_ENABLED", true),
			MaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. Used by tooling that
// never issues tokens.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()

	cfg := databaseFromEnv()
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
		return cfg, nil
	default:
		return DatabaseConfig{}, fmt.Errorf("%w: %q", ErrUnknownDBDriver, cfg.Driver)
	}
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Driver:         getEnv("DB_DRIVER", DriverPostgres),
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "lankamarket"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "lankamarket.db"),
	}
}

// Validate checks settings that must be correct before anything starts.
// There is no fallback signing secret.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBDriver, c.Database.Driver)
	}

	if len(c.Auth.TokenSecret) == 0 {
		return ErrMissingTokenSecret
	}

	switch c.Auth.TokenStrategy {
	case TokenStrategyJWT:
		if len(c.Auth.TokenSecret) < 32 {
			return fmt.Errorf("%w: JWT secret must be at least 32 bytes, got %d", ErrTokenSecretTooShort, len(c.Auth.TokenSecret))
		}
	case TokenStrategyPaseto:
		// v4.local needs a 32 byte symmetric key
		if len(c.Auth.TokenSecret) != 32 {
			return fmt.Errorf("%w: PASETO key must be exactly 32 bytes, got %d", ErrTokenSecretTooShort, len(c.Auth.TokenSecret))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTokenType, c.Auth.TokenStrategy)
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Enabled reports whether SMTP delivery is configured
func (c *EmailConfig) Enabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return b
}

// getDurationEnv reads a duration given in whole seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrConfiguration marks a missing or invalid setting. It is fatal at startup.
var ErrConfiguration = errors.New("config: invalid configuration")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Server      ServerConfig
	Session     SessionConfig
	Tracking    TrackingConfig
	Slack       SlackConfig
	Seed        SeedConfig
	Development bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// SessionConfig holds visitor session settings.
type SessionConfig struct {
	CookieName   string
	TTL          time.Duration
	SecureCookie bool
}

// TrackingConfig holds the analytics collector settings. CollectorURL and
// ContainerID are required; the rest are optional.
type TrackingConfig struct {
	CollectorURL      string
	ContainerID       string
	APISecret         string //nolint:gosec // G117: collector secret config
	ProvisioningToken string //nolint:gosec // G117: opaque provisioning blob
	Timeout           time.Duration
}

// SlackConfig holds the order notification settings. Notifications are
// disabled when BotToken is empty.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// SeedConfig holds the bootstrap admin account used on an empty database.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string //nolint:gosec // G117: bootstrap credential
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("STOREFRONT_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("STOREFRONT_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("STOREFRONT_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("STOREFRONT_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("STOREFRONT_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("STOREFRONT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("STOREFRONT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionTTL, err := getEnvDuration("STOREFRONT_SESSION_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	secureCookie, err := getEnvBool("STOREFRONT_SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	collectorTimeout, err := getEnvDuration("STOREFRONT_COLLECTOR_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	development, err := getEnvBool("STOREFRONT_DEVELOPMENT", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("STOREFRONT_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("STOREFRONT_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("STOREFRONT_DB_USER", "storefront"),
			Password: getEnv("STOREFRONT_DB_PASSWORD", ""),
			DBName:   getEnv("STOREFRONT_DB_NAME", "storefront_dev"),
			SSLMode:  getEnv("STOREFRONT_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("STOREFRONT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("STOREFRONT_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("STOREFRONT_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("STOREFRONT_SERVER_ADDR", ":5015"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Session: SessionConfig{
			CookieName:   getEnv("STOREFRONT_SESSION_COOKIE", "storefront_session"),
			TTL:          sessionTTL,
			SecureCookie: secureCookie,
		},
		Tracking: TrackingConfig{
			CollectorURL:      strings.TrimRight(getEnv("STOREFRONT_COLLECTOR_URL", ""), "/"),
			ContainerID:       getEnv("STOREFRONT_CONTAINER_ID", ""),
			APISecret:         getEnv("STOREFRONT_COLLECTOR_API_SECRET", ""),
			ProvisioningToken: getEnv("STOREFRONT_PROVISIONING_TOKEN", ""),
			Timeout:           collectorTimeout,
		},
		Slack: SlackConfig{
			BotToken: getEnv("STOREFRONT_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("STOREFRONT_SLACK_CHANNEL", "#orders"),
		},
		Seed: SeedConfig{
			AdminUsername: getEnv("STOREFRONT_ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("STOREFRONT_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("STOREFRONT_ADMIN_PASSWORD", "admin123"),
		},
		Development: development,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return fmt.Errorf("%w: STOREFRONT_JWT_SECRET is required", ErrConfiguration)
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("%w: STOREFRONT_JWT_SECRET must be at least 32 characters", ErrConfiguration)
	}

	if c.Tracking.CollectorURL == "" {
		return fmt.Errorf("%w: STOREFRONT_COLLECTOR_URL is required", ErrConfiguration)
	}
	u, err := url.Parse(c.Tracking.CollectorURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: STOREFRONT_COLLECTOR_URL must be an absolute http(s) URL, got %q", ErrConfiguration, c.Tracking.CollectorURL)
	}
	if c.Tracking.ContainerID == "" {
		return fmt.Errorf("%w: STOREFRONT_CONTAINER_ID is required", ErrConfiguration)
	}
	if c.Tracking.Timeout <= 0 {
		return fmt.Errorf("%w: STOREFRONT_COLLECTOR_TIMEOUT must be positive, got %s", ErrConfiguration, c.Tracking.Timeout)
	}

	// DB SSL mode warning outside development.
	if c.Database.SSLMode == "disable" && !c.Development {
		log.Warn().Msg("STOREFRONT_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("%w: STOREFRONT_DB_PORT must be 1-65535, got %d", ErrConfiguration, c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("%w: STOREFRONT_DB_MAX_CONNS must be >= 1, got %d", ErrConfiguration, c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("%w: STOREFRONT_JWT_ACCESS_TTL must be positive, got %s", ErrConfiguration, c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("%w: STOREFRONT_JWT_REFRESH_TTL must be positive, got %s", ErrConfiguration, c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("%w: STOREFRONT_SERVER_READ_TIMEOUT must be positive, got %s", ErrConfiguration, c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("%w: STOREFRONT_SERVER_WRITE_TIMEOUT must be positive, got %s", ErrConfiguration, c.Server.WriteTimeout)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: STOREFRONT_SESSION_TTL must be positive, got %s", ErrConfiguration, c.Session.TTL)
	}
	if c.Seed.AdminPassword == "" {
		return fmt.Errorf("%w: STOREFRONT_ADMIN_PASSWORD must not be empty", ErrConfiguration)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

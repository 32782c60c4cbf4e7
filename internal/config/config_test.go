package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "STOREFRONT_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "STOREFRONT_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "STOREFRONT_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "STOREFRONT_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "STOREFRONT_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "STOREFRONT_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "STOREFRONT_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "STOREFRONT_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "STOREFRONT_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "STOREFRONT_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "STOREFRONT_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "STOREFRONT_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "STOREFRONT_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "STOREFRONT_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "STOREFRONT_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "STOREFRONT_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "STOREFRONT_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "STOREFRONT_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "STOREFRONT_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "STOREFRONT_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "STOREFRONT_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "STOREFRONT_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "STOREFRONT_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "STOREFRONT_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "STOREFRONT_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "STOREFRONT_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "STOREFRONT_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "STOREFRONT_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "STOREFRONT_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "STOREFRONT_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "STOREFRONT_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// getEnvList
// ---------------------------------------------------------------------------

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback []string
		want     []string
	}{
		{name: "returns fallback when unset", key: "STOREFRONT_TEST_LIST_UNSET", fallback: []string{"a"}, want: []string{"a"}},
		{name: "splits and trims", key: "STOREFRONT_TEST_LIST_SPLIT", setVal: strPtr(" a , b,c "), want: []string{"a", "b", "c"}},
		{name: "drops empty parts", key: "STOREFRONT_TEST_LIST_EMPTY", setVal: strPtr("a,,b,"), want: []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			assert.Equal(t, tc.want, getEnvList(tc.key, tc.fallback))
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

// setRequired sets every variable Load needs so failures come from the
// variable under test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STOREFRONT_JWT_SECRET", "test-secret-that-is-at-least-32ch")
	t.Setenv("STOREFRONT_COLLECTOR_URL", "https://collector.example.com")
	t.Setenv("STOREFRONT_CONTAINER_ID", "GTM-TEST123")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("STOREFRONT_COLLECTOR_URL", "https://collector.example.com")
	t.Setenv("STOREFRONT_CONTAINER_ID", "GTM-TEST123")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "STOREFRONT_JWT_SECRET")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestLoad_MissingTrackingSettings(t *testing.T) {
	t.Run("collector url", func(t *testing.T) {
		t.Setenv("STOREFRONT_JWT_SECRET", "test-secret-that-is-at-least-32ch")
		t.Setenv("STOREFRONT_CONTAINER_ID", "GTM-TEST123")

		cfg, err := Load()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "STOREFRONT_COLLECTOR_URL")
	})

	t.Run("container id", func(t *testing.T) {
		t.Setenv("STOREFRONT_JWT_SECRET", "test-secret-that-is-at-least-32ch")
		t.Setenv("STOREFRONT_COLLECTOR_URL", "https://collector.example.com")

		cfg, err := Load()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "STOREFRONT_CONTAINER_ID")
	})
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		// DB_PORT parse errors
		{name: "DB_PORT not a number", envKey: "STOREFRONT_DB_PORT", envVal: "abc", errMsg: "STOREFRONT_DB_PORT"},
		{name: "DB_PORT float", envKey: "STOREFRONT_DB_PORT", envVal: "3.14", errMsg: "STOREFRONT_DB_PORT"},

		// DB_PORT validation errors (parses fine, fails bounds)
		{name: "DB_PORT zero", envKey: "STOREFRONT_DB_PORT", envVal: "0", errMsg: "STOREFRONT_DB_PORT"},
		{name: "DB_PORT too high", envKey: "STOREFRONT_DB_PORT", envVal: "65536", errMsg: "STOREFRONT_DB_PORT"},

		// DB_MAX_CONNS
		{name: "DB_MAX_CONNS zero", envKey: "STOREFRONT_DB_MAX_CONNS", envVal: "0", errMsg: "STOREFRONT_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "STOREFRONT_DB_MAX_CONNS", envVal: "many", errMsg: "STOREFRONT_DB_MAX_CONNS"},

		// JWT durations
		{name: "JWT_ACCESS_TTL invalid", envKey: "STOREFRONT_JWT_ACCESS_TTL", envVal: "badval", errMsg: "STOREFRONT_JWT_ACCESS_TTL"},
		{name: "JWT_REFRESH_TTL zero", envKey: "STOREFRONT_JWT_REFRESH_TTL", envVal: "0s", errMsg: "STOREFRONT_JWT_REFRESH_TTL"},

		// Server timeouts
		{name: "SERVER_READ_TIMEOUT zero", envKey: "STOREFRONT_SERVER_READ_TIMEOUT", envVal: "0s", errMsg: "STOREFRONT_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT invalid", envKey: "STOREFRONT_SERVER_WRITE_TIMEOUT", envVal: "notduration", errMsg: "STOREFRONT_SERVER_WRITE_TIMEOUT"},

		// Redis DB
		{name: "REDIS_DB not a number", envKey: "STOREFRONT_REDIS_DB", envVal: "abc", errMsg: "STOREFRONT_REDIS_DB"},

		// Sessions
		{name: "SESSION_TTL negative", envKey: "STOREFRONT_SESSION_TTL", envVal: "-1h", errMsg: "STOREFRONT_SESSION_TTL"},
		{name: "SESSION_SECURE not a bool", envKey: "STOREFRONT_SESSION_SECURE", envVal: "yes", errMsg: "STOREFRONT_SESSION_SECURE"},

		// Tracking
		{name: "COLLECTOR_URL relative", envKey: "STOREFRONT_COLLECTOR_URL", envVal: "/collect", errMsg: "STOREFRONT_COLLECTOR_URL"},
		{name: "COLLECTOR_URL bad scheme", envKey: "STOREFRONT_COLLECTOR_URL", envVal: "ftp://collector", errMsg: "STOREFRONT_COLLECTOR_URL"},
		{name: "COLLECTOR_TIMEOUT zero", envKey: "STOREFRONT_COLLECTOR_TIMEOUT", envVal: "0s", errMsg: "STOREFRONT_COLLECTOR_TIMEOUT"},

		// Development flag
		{name: "DEVELOPMENT not a bool", envKey: "STOREFRONT_DEVELOPMENT", envVal: "yes", errMsg: "STOREFRONT_DEVELOPMENT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "storefront", cfg.Database.User)
	assert.Equal(t, "storefront_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	// Redis defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	// JWT defaults.
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)

	// Server defaults.
	assert.Equal(t, ":5015", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	// Session defaults.
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.SecureCookie)

	// Tracking defaults.
	assert.Equal(t, "https://collector.example.com", cfg.Tracking.CollectorURL)
	assert.Equal(t, "GTM-TEST123", cfg.Tracking.ContainerID)
	assert.Empty(t, cfg.Tracking.APISecret)
	assert.Empty(t, cfg.Tracking.ProvisioningToken)
	assert.Equal(t, 5*time.Second, cfg.Tracking.Timeout)

	// Slack and seed defaults.
	assert.Empty(t, cfg.Slack.BotToken)
	assert.Equal(t, "#orders", cfg.Slack.Channel)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Equal(t, "admin123", cfg.Seed.AdminPassword)

	assert.False(t, cfg.Development)
}

func TestLoad_TrackingCustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("STOREFRONT_COLLECTOR_URL", "https://tags.example.com/")
	t.Setenv("STOREFRONT_COLLECTOR_API_SECRET", "s3cret")
	t.Setenv("STOREFRONT_PROVISIONING_TOKEN", "aWQ9R1RNLVRFU1QxMjM=")
	t.Setenv("STOREFRONT_COLLECTOR_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	// Trailing slash is trimmed so "/collect" can be appended.
	assert.Equal(t, "https://tags.example.com", cfg.Tracking.CollectorURL)
	assert.Equal(t, "s3cret", cfg.Tracking.APISecret)
	assert.Equal(t, "aWQ9R1RNLVRFU1QxMjM=", cfg.Tracking.ProvisioningToken)
	assert.Equal(t, 2*time.Second, cfg.Tracking.Timeout)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "storefront",
				Password: "", DBName: "storefront_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=storefront password= dbname=storefront_dev sslmode=disable",
		},
		{
			name: "production values",
			cfg: DatabaseConfig{
				Host: "db.prod", Port: 5433, User: "admin",
				Password: "p@ss!", DBName: "shop", SSLMode: "require",
			},
			want: "host=db.prod port=5433 user=admin password=p@ss! dbname=shop sslmode=require",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25, SSLMode: "require"},
			JWT: JWTConfig{
				Secret:     "test-secret-that-is-at-least-32ch",
				AccessTTL:  15 * time.Minute,
				RefreshTTL: 7 * 24 * time.Hour,
			},
			Server: ServerConfig{
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
			Session: SessionConfig{TTL: time.Hour},
			Tracking: TrackingConfig{
				CollectorURL: "http://collector.local:8080",
				ContainerID:  "GTM-ABC",
				Timeout:      5 * time.Second,
			},
			Seed: SeedConfig{AdminPassword: "admin123"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("JWT secret too short fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "only-31-characters-long-secret!"
		assert.ErrorContains(t, c.validate(), "STOREFRONT_JWT_SECRET")
	})

	t.Run("JWT secret exactly 32 chars passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "exactly-32-characters-long-sec!!"
		assert.NoError(t, c.validate())
	})

	t.Run("collector url without host fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Tracking.CollectorURL = "https://"
		err := c.validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorContains(t, err, "STOREFRONT_COLLECTOR_URL")
	})

	t.Run("empty container id fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Tracking.ContainerID = ""
		assert.ErrorContains(t, c.validate(), "STOREFRONT_CONTAINER_ID")
	})

	t.Run("optional tracking fields may be empty", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Tracking.APISecret = ""
		c.Tracking.ProvisioningToken = ""
		assert.NoError(t, c.validate())
	})

	t.Run("port 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 0
		assert.ErrorContains(t, c.validate(), "STOREFRONT_DB_PORT")
	})

	t.Run("MaxConns 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = 0
		assert.ErrorContains(t, c.validate(), "STOREFRONT_DB_MAX_CONNS")
	})

	t.Run("session TTL 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Session.TTL = 0
		assert.ErrorContains(t, c.validate(), "STOREFRONT_SESSION_TTL")
	})

	t.Run("empty admin password fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Seed.AdminPassword = ""
		assert.ErrorContains(t, c.validate(), "STOREFRONT_ADMIN_PASSWORD")
	})
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}

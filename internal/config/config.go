package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appDirName = "auth-portal"

// Session backends understood by the session store factory.
const (
	SessionBackendFile     = "file"
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

// Config aggregates runtime configuration for the portal and CLI.
type Config struct {
	App      AppConfig
	Portal   PortalConfig
	Identity IdentityConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// PortalConfig describes the local app that owns the delegated-login return address.
type PortalConfig struct {
	Host                  string
	Port                  string
	PublicURL             string
	RedirectPath          string
	RequestTimeoutSeconds int
	CallbackWaitSeconds   int
}

// IdentityConfig points at the remote identity service.
type IdentityConfig struct {
	BaseURL          string
	TimeoutSeconds   int
	LoginPath        string
	RegisterPath     string
	AuthorizePath    string
	ResetRequestPath string
	ResetVerifyPath  string
	ResetConfirmPath string
	MePath           string
	ActivityPath     string
	AdminUsersPath   string
	AdminLogsPath    string
}

// SessionConfig selects where the single session credential lives.
type SessionConfig struct {
	Backend         string
	Key             string
	FilePath        string
	RedisPrefix     string
	ProactiveExpiry bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "auth-portal"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Portal: PortalConfig{
			Host:                  getEnv("PORTAL_HOST", "127.0.0.1"),
			Port:                  getEnv("PORTAL_PORT", "3000"),
			PublicURL:             strings.TrimRight(getEnv("PORTAL_PUBLIC_URL", "http://localhost:3000"), "/"),
			RedirectPath:          getEnv("PORTAL_REDIRECT_PATH", "/oauth2/redirect"),
			RequestTimeoutSeconds: getEnvAsInt("PORTAL_REQUEST_TIMEOUT_SECONDS", 30),
			CallbackWaitSeconds:   getEnvAsInt("PORTAL_CALLBACK_WAIT_SECONDS", 300),
		},
		Identity: IdentityConfig{
			BaseURL:          strings.TrimRight(getEnv("IDENTITY_BASE_URL", "http://localhost:8080"), "/"),
			TimeoutSeconds:   getEnvAsInt("IDENTITY_TIMEOUT_SECONDS", 0),
			LoginPath:        getEnv("IDENTITY_LOGIN_PATH", "/api/auth/login"),
			RegisterPath:     getEnv("IDENTITY_REGISTER_PATH", "/api/auth/register"),
			AuthorizePath:    getEnv("IDENTITY_AUTHORIZE_PATH", "/oauth2/authorize"),
			ResetRequestPath: getEnv("IDENTITY_RESET_REQUEST_PATH", "/api/auth/password-reset/request"),
			ResetVerifyPath:  getEnv("IDENTITY_RESET_VERIFY_PATH", "/api/auth/password-reset/verify"),
			ResetConfirmPath: getEnv("IDENTITY_RESET_CONFIRM_PATH", "/api/auth/password-reset/confirm"),
			MePath:           getEnv("IDENTITY_ME_PATH", "/api/users/me"),
			ActivityPath:     getEnv("IDENTITY_ACTIVITY_PATH", "/api/users/me/activity"),
			AdminUsersPath:   getEnv("IDENTITY_ADMIN_USERS_PATH", "/api/admin/users"),
			AdminLogsPath:    getEnv("IDENTITY_ADMIN_LOGS_PATH", "/api/admin/logs"),
		},
		Session: SessionConfig{
			Backend:         strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendFile)),
			Key:             getEnv("SESSION_KEY", "token"),
			FilePath:        getEnv("SESSION_FILE", filepath.Join(StateDir(), "token")),
			RedisPrefix:     getEnv("SESSION_REDIS_PREFIX", "auth-portal:session"),
			ProactiveExpiry: getEnvAsBool("SESSION_PROACTIVE_EXPIRY", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that cannot produce a working session store.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory, SessionBackendRedis:
	case SessionBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("SESSION_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.Key == "" {
		return fmt.Errorf("SESSION_KEY must not be empty")
	}
	if !strings.HasPrefix(c.Portal.RedirectPath, "/") {
		return fmt.Errorf("PORTAL_REDIRECT_PATH must start with /")
	}
	return nil
}

// Addr returns the portal bind address.
func (p PortalConfig) Addr() string {
	return fmt.Sprintf("%s:%s", p.Host, p.Port)
}

// RedirectURL is the fixed return address handed to the identity service.
func (p PortalConfig) RedirectURL() string {
	return p.PublicURL + p.RedirectPath
}

// RequestTimeout returns the configured request timeout duration.
func (p PortalConfig) RequestTimeout() time.Duration {
	if p.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

// CallbackWait bounds how long the CLI waits for a delegated login to land.
func (p PortalConfig) CallbackWait() time.Duration {
	if p.CallbackWaitSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.CallbackWaitSeconds) * time.Second
}

// Timeout returns the HTTP client timeout; zero leaves the transport default.
func (i IdentityConfig) Timeout() time.Duration {
	if i.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(i.TimeoutSeconds) * time.Second
}

// StateDir returns the XDG state directory for the portal.
// Checks XDG_STATE_HOME first, falls back to ~/.local/state.
func StateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(base, appDirName)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

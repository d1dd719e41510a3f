package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig holds edge middleware settings.
type HTTPConfig struct {
	CORSOrigins         []string
	RateLimitMax        int
	RateLimitWindowSecs int
	BodyLimitBytes      int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	EventsChannel string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
	BcryptCost    int
}

// StorageConfig locates the object store for post media.
type StorageConfig struct {
	Dir            string
	Folder         string
	PublicBaseURL  string
	MaxUploadBytes int64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Values may also come from a YAML file named by APP_CONFIG_FILE whose keys are the
// environment variable names; the process environment wins over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	src, err := newSource(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(src.get("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  src.get("APP_NAME", "content-service"),
			Env:                   src.get("APP_ENV", "development"),
			Host:                  src.get("APP_HOST", "0.0.0.0"),
			Port:                  src.get("APP_PORT", "5001"),
			Version:               src.get("APP_VERSION", "dev"),
			RequestTimeoutSeconds: src.getInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			CORSOrigins:         src.getList("HTTP_CORS_ORIGINS", []string{"http://localhost:5173"}),
			RateLimitMax:        src.getInt("HTTP_RATE_LIMIT_MAX", 100),
			RateLimitWindowSecs: src.getInt("HTTP_RATE_LIMIT_WINDOW_SECONDS", 15*60),
			BodyLimitBytes:      src.getInt("HTTP_BODY_LIMIT_BYTES", 10*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            src.get("POSTGRES_DSN", ""),
			MaxConns:       int32(src.getInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(src.getInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  src.getBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  src.get("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(src.getInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(src.getInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          src.get("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      src.get("REDIS_PASSWORD", ""),
			DB:            redisDB,
			EventsChannel: src.get("REDIS_EVENTS_CHANNEL", "content-service.events"),
		},
		Logger: LoggerConfig{
			Level: src.get("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:     src.get("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLHours: src.getInt("AUTH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:    src.getInt("AUTH_BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			Dir:            src.get("STORAGE_DIR", "uploads"),
			Folder:         src.get("STORAGE_FOLDER", "blog_posts"),
			PublicBaseURL:  src.get("STORAGE_PUBLIC_BASE_URL", "http://localhost:5001/media"),
			MaxUploadBytes: int64(src.getInt("STORAGE_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		Notification: NotificationConfig{
			EmailFrom:  src.get("NOTIFY_EMAIL_FROM", "noreply@blogapp.com"),
			WebhookURL: src.get("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RateLimitWindow returns the throttle window.
func (h HTTPConfig) RateLimitWindow() time.Duration {
	return time.Duration(h.RateLimitWindowSecs) * time.Second
}

// TokenTTL returns the session token validity window.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{file: map[string]string{}}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return s, nil
}

func (s *source) get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val := s.file[key]; val != "" {
		return val
	}
	return fallback
}

func (s *source) getInt(key string, fallback int) int {
	val := s.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s *source) getBool(key string, fallback bool) bool {
	val := s.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s *source) getList(key string, fallback []string) []string {
	val := s.get(key, "")
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

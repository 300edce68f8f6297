package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream      UpstreamConfig
	Query         QueryConfig
	Redis         RedisConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Assistant     AssistantConfig
	Jobs          JobsConfig
	Notifications NotificationsConfig
}

// UpstreamConfig points the gateway at the LMS REST backend.
type UpstreamConfig struct {
	BaseURL         string
	Timeout         time.Duration
	FallbackMessage string
}

// QueryConfig tunes the keyed query cache.
type QueryConfig struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	SharedCache  bool
	SharedTTL    time.Duration
	// GCTime is how long an unused entry survives before the janitor drops it.
	GCTime       time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig is only used for the mutation audit trail.
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AssistantConfig configures the AI chat and content generation.
type AssistantConfig struct {
	Enabled      bool
	APIKey       string
	Model        string
	HistoryLimit int
	Timeout      time.Duration
}

// JobsConfig sizes the background worker queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationsConfig tunes the websocket push channel.
type NotificationsConfig struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
	TicketTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL:         strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout:         parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
		FallbackMessage: v.GetString("UPSTREAM_FALLBACK_MESSAGE"),
	}

	cfg.Query = QueryConfig{
		StaleTime:    parseDuration(v.GetString("QUERY_STALE_TIME"), 30*time.Second),
		FetchTimeout: parseDuration(v.GetString("QUERY_FETCH_TIMEOUT"), 15*time.Second),
		SharedCache:  v.GetBool("QUERY_SHARED_CACHE"),
		SharedTTL:    parseDuration(v.GetString("QUERY_SHARED_TTL"), 5*time.Minute),
		GCTime:       parseDuration(v.GetString("QUERY_GC_TIME"), 5*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("AUDIT_ENABLED"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	historyLimit := v.GetInt("ASSISTANT_HISTORY_LIMIT")
	if historyLimit <= 0 {
		historyLimit = 50
	}
	cfg.Assistant = AssistantConfig{
		Enabled:      v.GetBool("ENABLE_ASSISTANT"),
		APIKey:       v.GetString("GEMINI_API_KEY"),
		Model:        v.GetString("ASSISTANT_MODEL"),
		HistoryLimit: historyLimit,
		Timeout:      parseDuration(v.GetString("ASSISTANT_TIMEOUT"), 30*time.Second),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Notifications = NotificationsConfig{
		SendBuffer:   v.GetInt("NOTIFY_SEND_BUFFER"),
		WriteTimeout: parseDuration(v.GetString("NOTIFY_WRITE_TIMEOUT"), 10*time.Second),
		PingInterval: parseDuration(v.GetString("NOTIFY_PING_INTERVAL"), 30*time.Second),
		TicketTTL:    parseDuration(v.GetString("NOTIFY_TICKET_TTL"), time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3000")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_FALLBACK_MESSAGE", "Ocorreu um erro inesperado. Tente novamente.")

	v.SetDefault("QUERY_STALE_TIME", "30s")
	v.SetDefault("QUERY_FETCH_TIMEOUT", "15s")
	v.SetDefault("QUERY_SHARED_CACHE", false)
	v.SetDefault("QUERY_SHARED_TTL", "5m")
	v.SetDefault("QUERY_GC_TIME", "5m")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ASSISTANT", false)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("ASSISTANT_MODEL", "gemini-2.0-flash")
	v.SetDefault("ASSISTANT_HISTORY_LIMIT", 50)
	v.SetDefault("ASSISTANT_TIMEOUT", "30s")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 32)
	v.SetDefault("JOBS_MAX_RETRIES", 2)
	v.SetDefault("JOBS_RETRY_DELAY", "2s")

	v.SetDefault("NOTIFY_SEND_BUFFER", 64)
	v.SetDefault("NOTIFY_WRITE_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_PING_INTERVAL", "30s")
	v.SetDefault("NOTIFY_TICKET_TTL", "1m")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

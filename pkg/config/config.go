package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Docstore drivers selectable via DOCSTORE_DRIVER.
const (
	DocstoreDriverPostgres = "postgres"
	DocstoreDriverMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Docstore      DocstoreConfig
	Subscriptions SubscriptionsConfig
	ViewState     ViewStateConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocstoreConfig selects the document store backend.
type DocstoreConfig struct {
	Driver string
	Table  string
}

// SubscriptionsConfig tunes the change fan-out workers behind live queries.
type SubscriptionsConfig struct {
	Workers        int
	BufferSize     int
	RedisRelay     bool
	RelayChannel   string
	PushTimeout    time.Duration
	RefreshRetries int
}

// ViewStateConfig selects where per-viewer watermarks live.
type ViewStateConfig struct {
	Backend string // "redis" or "memory"
	TTL     time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Docstore = DocstoreConfig{
		Driver: v.GetString("DOCSTORE_DRIVER"),
		Table:  v.GetString("DOCSTORE_TABLE"),
	}

	cfg.Subscriptions = SubscriptionsConfig{
		Workers:        v.GetInt("SUBSCRIPTIONS_WORKERS"),
		BufferSize:     v.GetInt("SUBSCRIPTIONS_BUFFER"),
		RedisRelay:     v.GetBool("SUBSCRIPTIONS_REDIS_RELAY"),
		RelayChannel:   v.GetString("SUBSCRIPTIONS_RELAY_CHANNEL"),
		PushTimeout:    parseDuration(v.GetString("SUBSCRIPTIONS_PUSH_TIMEOUT"), 5*time.Second),
		RefreshRetries: v.GetInt("SUBSCRIPTIONS_REFRESH_RETRIES"),
	}

	cfg.ViewState = ViewStateConfig{
		Backend: v.GetString("VIEWSTATE_BACKEND"),
		TTL:     parseDuration(v.GetString("VIEWSTATE_TTL"), 0),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_ledger")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOCSTORE_DRIVER", DocstoreDriverPostgres)
	v.SetDefault("DOCSTORE_TABLE", "documents")

	v.SetDefault("SUBSCRIPTIONS_WORKERS", 2)
	v.SetDefault("SUBSCRIPTIONS_BUFFER", 64)
	v.SetDefault("SUBSCRIPTIONS_REDIS_RELAY", false)
	v.SetDefault("SUBSCRIPTIONS_RELAY_CHANNEL", "ledger:changes")
	v.SetDefault("SUBSCRIPTIONS_PUSH_TIMEOUT", "5s")
	v.SetDefault("SUBSCRIPTIONS_REFRESH_RETRIES", 2)

	v.SetDefault("VIEWSTATE_BACKEND", "redis")
	v.SetDefault("VIEWSTATE_TTL", "0")
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

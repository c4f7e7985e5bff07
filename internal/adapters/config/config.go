package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"humesync/pkg/errors"
)

type Config struct {
	App           AppConfig
	Hume          HumeConfig
	Prompts       PromptsConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"humesync"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// HumeConfig configures the voice provider client.
// An empty API key is allowed; the provider rejects the calls.
type HumeConfig struct {
	APIKey            string        `envconfig:"HUME_API_KEY"`
	BaseURL           string        `envconfig:"HUME_API_BASE" default:"https://api.hume.ai/v0"`
	Timeout           time.Duration `envconfig:"HUME_TIMEOUT" default:"10s"`
	MaxCreateAttempts int           `envconfig:"HUME_MAX_CREATE_ATTEMPTS" default:"3"`
	RequestsPerMinute int           `envconfig:"HUME_REQUESTS_PER_MINUTE" default:"0"` // 0 disables throttling
	DefaultVoice      string        `envconfig:"HUME_DEFAULT_VOICE" default:"ITO"`
	DefaultLanguage   string        `envconfig:"HUME_DEFAULT_LANGUAGE" default:"en"`
}

type PromptsConfig struct {
	// TemplatesDir overrides the embedded sales templates when set
	TemplatesDir string `envconfig:"PROMPT_TEMPLATES_DIR"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig is optional; an empty host disables the snapshot cache and create lock
type RedisConfig struct {
	Host             string        `envconfig:"REDIS_HOST"`
	Port             int           `envconfig:"REDIS_PORT" default:"6379"`
	Password         string        `envconfig:"REDIS_PASSWORD"`
	DB               int           `envconfig:"REDIS_DB" default:"0"`
	SnapshotCacheTTL time.Duration `envconfig:"SNAPSHOT_CACHE_TTL" default:"5m"`
	CreateLockTTL    time.Duration `envconfig:"CREATE_LOCK_TTL" default:"1m"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig is optional; no brokers means sync events are not published
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	ClientID string  `envconfig:"KAFKA_CLIENT_ID" default:"humesync"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	ReconcileEnabled  bool          `envconfig:"RECONCILE_ENABLED" default:"true"`
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"10m"`
}

// Load reads configuration from environment variables.
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}

// LoadHume reads only the provider and prompt sections, for tools that do not
// touch the database.
func LoadHume() (HumeConfig, PromptsConfig, error) {
	_ = godotenv.Load()

	var hume HumeConfig
	if err := envconfig.Process("", &hume); err != nil {
		return hume, PromptsConfig{}, errors.Wrap(err, "failed to process hume config")
	}
	var prompts PromptsConfig
	if err := envconfig.Process("", &prompts); err != nil {
		return hume, prompts, errors.Wrap(err, "failed to process prompts config")
	}
	return hume, prompts, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Session  SessionConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Receipts ReceiptsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKET_APP_ENV" default:"prod"`
	LogLevel     string `envconfig:"MARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL   string        `envconfig:"MARKET_API_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"MARKET_API_TIMEOUT" default:"30s"`
	UserAgent string        `envconfig:"MARKET_API_USER_AGENT" default:"marketplace-client"`
}

type SessionConfig struct {
	// ID identifies this device/session; the durable cart record is
	// keyed by it. Generated and persisted on first use when empty.
	ID string `envconfig:"MARKET_SESSION_ID"`
}

type StorageConfig struct {
	Backend    string `envconfig:"MARKET_CART_STORAGE" default:"sqlite"`
	SQLitePath string `envconfig:"MARKET_CART_SQLITE_PATH" default:"marketplace.db"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StorageBackendSQLite, StorageBackendRedis, StorageBackendMemory:
		return nil
	}
	return fmt.Errorf("unknown cart storage backend %q", s.Backend)
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKET_REDIS_URL"`
	Address      string        `envconfig:"MARKET_REDIS_ADDR"`
	Password     string        `envconfig:"MARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ReceiptsConfig struct {
	Dir string `envconfig:"MARKET_RECEIPTS_DIR" default:"."`
}

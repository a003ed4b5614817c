package config

const (
	EnvPrefix = "MARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageBackendSQLite = "sqlite"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

// Environment variable names used by tests and tooling.
const (
	EnvAppEnv      = "MARKET_APP_ENV"
	EnvAPIBaseURL  = "MARKET_API_BASE_URL"
	EnvAPITimeout  = "MARKET_API_TIMEOUT"
	EnvSessionID   = "MARKET_SESSION_ID"
	EnvCartStorage = "MARKET_CART_STORAGE"
	EnvSQLitePath  = "MARKET_CART_SQLITE_PATH"
	EnvRedisURL    = "MARKET_REDIS_URL"
	EnvReceiptsDir = "MARKET_RECEIPTS_DIR"
)

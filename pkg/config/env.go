package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
	StorageDriverMemory = "memory"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvBackendBaseURL  = "STOREFRONT_BACKEND_BASE_URL"
	EnvCartMaxQuantity = "STOREFRONT_CART_MAX_QUANTITY"
	EnvStorageDriver   = "STOREFRONT_STORAGE_DRIVER"
	EnvDBDriver        = "STOREFRONT_DB_DRIVER"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvSalesCacheTTL   = "STOREFRONT_SALES_CACHE_TTL"
)

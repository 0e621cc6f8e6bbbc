package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Cart      CartConfig
	Storage   StorageConfig
	DB        DBConfig
	Redis     RedisConfig
	Sales     SalesConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
	Janitor   JanitorConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the commerce REST API the gateway fronts.
type BackendConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_BACKEND_TIMEOUT" default:"10s"`
}

type CartConfig struct {
	MaxQuantity int    `envconfig:"STOREFRONT_CART_MAX_QUANTITY" default:"10"`
	StorageKey  string `envconfig:"STOREFRONT_CART_STORAGE_KEY" default:"cart"`
}

// StorageConfig selects the durable client-state driver: redis, sql or memory.
type StorageConfig struct {
	Driver string        `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"redis"`
	TTL    time.Duration `envconfig:"STOREFRONT_STORAGE_TTL" default:"720h"`
}

type DBConfig struct {
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"STOREFRONT_DB_DSN" default:"file:storefront.db?cache=shared"`

	AutoMigrate     bool          `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Configured reports whether enough settings exist to dial Redis.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type SalesConfig struct {
	CacheTTL time.Duration `envconfig:"STOREFRONT_SALES_CACHE_TTL" default:"60s"`
}

type CheckoutConfig struct {
	InFlightTTL time.Duration `envconfig:"STOREFRONT_CHECKOUT_IN_FLIGHT_TTL" default:"30s"`
}

// RateLimitConfig throttles coupon attempts per client IP and per session.
// A zero window or limit disables the check.
type RateLimitConfig struct {
	CouponWindow time.Duration `envconfig:"STOREFRONT_COUPON_RATE_LIMIT_WINDOW" default:"1m"`
	CouponLimit  int           `envconfig:"STOREFRONT_COUPON_RATE_LIMIT" default:"10"`
}

// JanitorConfig drives the background sweep of expired client state.
type JanitorConfig struct {
	Enabled    bool          `envconfig:"STOREFRONT_JANITOR_ENABLED" default:"true"`
	Interval   time.Duration `envconfig:"STOREFRONT_JANITOR_INTERVAL" default:"1h"`
	StateGrace time.Duration `envconfig:"STOREFRONT_JANITOR_STATE_GRACE" default:"0s"`
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute url", EnvBackendBaseURL)
	}
	if c.Cart.MaxQuantity < 1 {
		return fmt.Errorf("%s must be positive", EnvCartMaxQuantity)
	}

	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case StorageDriverRedis:
		if !c.Redis.Configured() {
			return fmt.Errorf("either %s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverSQL:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the sql storage driver", EnvDBDSN)
		}
		switch c.DB.Driver {
		case DBDriverPostgres, DBDriverSQLite:
		default:
			return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	c.Storage.Driver = driver
	return nil
}

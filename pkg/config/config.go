package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "carryconnect"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Fees         FeeConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARRYCONNECT_APP_ENV" required:"true"`
	Port         string `envconfig:"CARRYCONNECT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARRYCONNECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARRYCONNECT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CARRYCONNECT_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"CARRYCONNECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARRYCONNECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARRYCONNECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARRYCONNECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARRYCONNECT_REDIS_URL"`
	Address      string        `envconfig:"CARRYCONNECT_REDIS_ADDR"`
	Password     string        `envconfig:"CARRYCONNECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARRYCONNECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARRYCONNECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARRYCONNECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARRYCONNECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARRYCONNECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARRYCONNECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CARRYCONNECT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CARRYCONNECT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CARRYCONNECT_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"CARRYCONNECT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARRYCONNECT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARRYCONNECT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARRYCONNECT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARRYCONNECT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARRYCONNECT_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey string `envconfig:"CARRYCONNECT_STRIPE_API_KEY"`
	Secret string `envconfig:"CARRYCONNECT_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"CARRYCONNECT_STRIPE_ENV" default:"test"`
}

// Environment reports the raw configured Stripe environment.
func (s StripeConfig) Environment() string {
	return s.Env
}

// CheckoutConfig holds the hosted checkout redirect targets.
type CheckoutConfig struct {
	SuccessURL string `envconfig:"CARRYCONNECT_CHECKOUT_SUCCESS_URL" default:"http://localhost:5173/dashboard?tab=messages&payment=success"`
	CancelURL  string `envconfig:"CARRYCONNECT_CHECKOUT_CANCEL_URL" default:"http://localhost:5173/dashboard?tab=messages&payment=cancelled"`
}

// FeeConfig captures the platform fee schedule. The rate is a decimal string
// so the split can be computed without float drift.
type FeeConfig struct {
	PlatformFeeRate  string `envconfig:"CARRYCONNECT_PLATFORM_FEE_RATE" default:"0.12"`
	MinimumChargeUSD int    `envconfig:"CARRYCONNECT_MINIMUM_CHARGE_USD" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARRYCONNECT_AUTO_MIGRATE" default:"false"`
}

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	UserStoreSQLite   = "sqlite"
	UserStorePostgres = "postgres"
)

// Config is everything the service reads from the environment. It is
// parsed once at startup and handed to the components explicitly.
type Config struct {
	// SecretKey signs every token. When JWT_SECRET_KEY is unset the general
	// application SECRET_KEY is used instead and SecretFromFallback is set
	// so startup can warn about it.
	SecretKey          string `env:"JWT_SECRET_KEY"`
	AppSecretKey       string `env:"SECRET_KEY"`
	SecretFromFallback bool

	Issuer string `env:"JWT_ISSUER" envDefault:"sessionauth"`

	AccessTokenMinutes int  `env:"JWT_ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTokenDays   int  `env:"JWT_REFRESH_TOKEN_EXPIRE_DAYS"   envDefault:"7"`
	SessionTTLSeconds  int  `env:"SESSION_TTL"                     envDefault:"1800"`
	RotateRefresh      bool `env:"REFRESH_TOKEN_ROTATION"          envDefault:"false"`
	MinPasswordLength  int  `env:"MIN_PASSWORD_LENGTH"             envDefault:"6"`

	SessionStore   string        `env:"SESSION_STORE"    envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL"        envDefault:"redis://127.0.0.1:6379/2"`
	RedisSessionDB int           `env:"REDIS_SESSION_DB" envDefault:"2"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX" envDefault:"auth:"`
	RedisTimeout   time.Duration `env:"REDIS_TIMEOUT"    envDefault:"2s"`

	UserStore    string `env:"USER_STORE"    envDefault:"sqlite"`
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	PepperFile string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1m"`
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

// LoadConfigFrom reads configuration from the given variables only.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return loadConfig(env.Options{Environment: vars})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SecretKey == "" && cfg.AppSecretKey != "" {
		cfg.SecretKey = cfg.AppSecretKey
		cfg.SecretFromFallback = true
	}
	cfg.AppSecretKey = ""

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.SecretKey == "":
		errs = append(errs, errors.New("JWT_SECRET_KEY (or SECRET_KEY) is required"))
	case len(c.SecretKey) < jwtx.MinSecretLength:
		errs = append(errs, fmt.Errorf("signing secret must be at least %d bytes", jwtx.MinSecretLength))
	}

	if c.AccessTokenMinutes <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshTokenDays <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.SessionTTLSeconds <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.MinPasswordLength < 1 {
		errs = append(errs, errors.New("MIN_PASSWORD_LENGTH must be at least 1"))
	}

	switch c.SessionStore {
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis session store"))
		}
		if c.RedisSessionDB < 0 {
			errs = append(errs, errors.New("REDIS_SESSION_DB must not be negative"))
		}
	case SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q", SessionStoreRedis, SessionStoreMemory))
	}

	switch c.UserStore {
	case UserStoreSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite user store"))
		}
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres user store"))
		}
	default:
		errs = append(errs, fmt.Errorf("USER_STORE must be %q or %q", UserStoreSQLite, UserStorePostgres))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.New("PORT is out of range"))
	}

	return errors.Join(errs...)
}
